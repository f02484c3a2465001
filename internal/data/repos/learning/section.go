package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/dberr"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type SectionRepo interface {
	Create(dbc dbctx.Context, row *types.Section) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Section, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Section, error)
	// List returns sections ordered by level then display_order. A nil
	// levelID lists every level.
	List(dbc dbctx.Context, levelID *uuid.UUID, activeOnly bool) ([]*types.Section, error)
	CountByLevelIDs(dbc dbctx.Context, levelIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteByLevelID(dbc dbctx.Context, levelID uuid.UUID) error
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return &sectionRepo{db: db, log: baseLog.With("repo", "SectionRepo")}
}

func (r *sectionRepo) Create(dbc dbctx.Context, row *types.Section) error {
	return dberr.Wrap(dbc.DB(r.db).Create(row).Error)
}

func (r *sectionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Section, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Section
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sectionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Section, error) {
	var out []*types.Section
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionRepo) List(dbc dbctx.Context, levelID *uuid.UUID, activeOnly bool) ([]*types.Section, error) {
	q := dbc.DB(r.db)
	if levelID != nil {
		q = q.Where("level_id = ?", *levelID)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []*types.Section
	if err := q.Order("level_id ASC, display_order ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type levelCount struct {
	LevelID uuid.UUID
	N       int64
}

func (r *sectionRepo) CountByLevelIDs(dbc dbctx.Context, levelIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(levelIDs))
	if len(levelIDs) == 0 {
		return out, nil
	}
	var rows []levelCount
	if err := dbc.DB(r.db).
		Model(&types.Section{}).
		Select("level_id, COUNT(*) AS n").
		Where("level_id IN ?", levelIDs).
		Group("level_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.LevelID] = row.N
	}
	return out, nil
}

func (r *sectionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dberr.Wrap(dbc.DB(r.db).
		Model(&types.Section{}).
		Where("id = ?", id).
		Updates(updates).Error)
}

func (r *sectionRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Section{}).Error
}

func (r *sectionRepo) DeleteByLevelID(dbc dbctx.Context, levelID uuid.UUID) error {
	if levelID == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("level_id = ?", levelID).Delete(&types.Section{}).Error
}
