package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/dberr"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type LevelRepo interface {
	Create(dbc dbctx.Context, row *types.Level) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Level, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Level, error)
	List(dbc dbctx.Context, activeOnly bool) ([]*types.Level, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type levelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLevelRepo(db *gorm.DB, baseLog *logger.Logger) LevelRepo {
	return &levelRepo{db: db, log: baseLog.With("repo", "LevelRepo")}
}

func (r *levelRepo) Create(dbc dbctx.Context, row *types.Level) error {
	return dberr.Wrap(dbc.DB(r.db).Create(row).Error)
}

func (r *levelRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Level, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Level
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *levelRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Level, error) {
	var out []*types.Level
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *levelRepo) List(dbc dbctx.Context, activeOnly bool) ([]*types.Level, error) {
	q := dbc.DB(r.db)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []*types.Level
	if err := q.Order("display_order ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *levelRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dberr.Wrap(dbc.DB(r.db).
		Model(&types.Level{}).
		Where("id = ?", id).
		Updates(updates).Error)
}

func (r *levelRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Level{}).Error
}
