package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/dberr"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type LessonFilter struct {
	LevelID    *uuid.UUID
	SectionIDs []uuid.UUID
	ActiveOnly bool
	// WithBlocks loads content_blocks; listings leave it off.
	WithBlocks bool
}

type LessonRepo interface {
	Create(dbc dbctx.Context, row *types.Lesson) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	List(dbc dbctx.Context, f LessonFilter) ([]*types.Lesson, error)
	// GetPredecessor returns the active lesson at displayOrder-1 in the same
	// section, or nil when there is none.
	GetPredecessor(dbc dbctx.Context, sectionID uuid.UUID, displayOrder int) (*types.Lesson, error)
	CountBySectionIDs(dbc dbctx.Context, sectionIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteBySectionIDs(dbc dbctx.Context, sectionIDs []uuid.UUID) error
	DeleteByLevelID(dbc dbctx.Context, levelID uuid.UUID) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(dbc dbctx.Context, row *types.Lesson) error {
	return dberr.Wrap(dbc.DB(r.db).Create(row).Error)
}

func (r *lessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Lesson
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *lessonRepo) List(dbc dbctx.Context, f LessonFilter) ([]*types.Lesson, error) {
	q := dbc.DB(r.db)
	if !f.WithBlocks {
		q = q.Omit("content_blocks")
	}
	if f.LevelID != nil {
		q = q.Where("level_id = ?", *f.LevelID)
	}
	if f.SectionIDs != nil {
		if len(f.SectionIDs) == 0 {
			return []*types.Lesson{}, nil
		}
		q = q.Where("section_id IN ?", f.SectionIDs)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []*types.Lesson
	if err := q.Order("section_id ASC, display_order ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) GetPredecessor(dbc dbctx.Context, sectionID uuid.UUID, displayOrder int) (*types.Lesson, error) {
	if sectionID == uuid.Nil || displayOrder <= 1 {
		return nil, nil
	}
	var row types.Lesson
	if err := dbc.DB(r.db).
		Omit("content_blocks").
		Where("section_id = ? AND display_order = ? AND is_active = ?", sectionID, displayOrder-1, true).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

type sectionCount struct {
	SectionID uuid.UUID
	N         int64
}

func (r *lessonRepo) CountBySectionIDs(dbc dbctx.Context, sectionIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(sectionIDs))
	if len(sectionIDs) == 0 {
		return out, nil
	}
	var rows []sectionCount
	if err := dbc.DB(r.db).
		Model(&types.Lesson{}).
		Select("section_id, COUNT(*) AS n").
		Where("section_id IN ?", sectionIDs).
		Group("section_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SectionID] = row.N
	}
	return out, nil
}

func (r *lessonRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dberr.Wrap(dbc.DB(r.db).
		Model(&types.Lesson{}).
		Where("id = ?", id).
		Updates(updates).Error)
}

func (r *lessonRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Lesson{}).Error
}

func (r *lessonRepo) DeleteBySectionIDs(dbc dbctx.Context, sectionIDs []uuid.UUID) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("section_id IN ?", sectionIDs).Delete(&types.Lesson{}).Error
}

func (r *lessonRepo) DeleteByLevelID(dbc dbctx.Context, levelID uuid.UUID) error {
	if levelID == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("level_id = ?", levelID).Delete(&types.Lesson{}).Error
}
