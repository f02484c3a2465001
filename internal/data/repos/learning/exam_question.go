package learning

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type ExamQuestionFilter struct {
	LevelID   *uuid.UUID
	SectionID *uuid.UUID
	IsActive  *bool
	// Search matches question or exam_title, case-insensitively.
	Search string
	Offset int
	Limit  int
}

type ExamQuestionLevelCount struct {
	LevelID uuid.UUID
	Count   int64
}

type ExamQuestionStats struct {
	Total        int64
	Active       int64
	CreatedSince int64
	ByLevel      []ExamQuestionLevelCount
}

type ExamQuestionRepo interface {
	Create(dbc dbctx.Context, row *types.ExamQuestion) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ExamQuestion, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.ExamQuestion, error)
	// ListActive returns active questions ordered for an exam sitting.
	ListActive(dbc dbctx.Context, levelID, sectionID *uuid.UUID) ([]*types.ExamQuestion, error)
	Page(dbc dbctx.Context, f ExamQuestionFilter) ([]*types.ExamQuestion, int64, error)
	Stats(dbc dbctx.Context, since time.Time) (*ExamQuestionStats, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type examQuestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExamQuestionRepo(db *gorm.DB, baseLog *logger.Logger) ExamQuestionRepo {
	return &examQuestionRepo{db: db, log: baseLog.With("repo", "ExamQuestionRepo")}
}

func (r *examQuestionRepo) Create(dbc dbctx.Context, row *types.ExamQuestion) error {
	return dbc.DB(r.db).Create(row).Error
}

func (r *examQuestionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ExamQuestion, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *examQuestionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.ExamQuestion, error) {
	var out []*types.ExamQuestion
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *examQuestionRepo) ListActive(dbc dbctx.Context, levelID, sectionID *uuid.UUID) ([]*types.ExamQuestion, error) {
	q := dbc.DB(r.db).Where("is_active = ?", true)
	if levelID != nil {
		q = q.Where("level_id = ?", *levelID)
	}
	if sectionID != nil {
		q = q.Where("section_id = ?", *sectionID)
	}
	var out []*types.ExamQuestion
	if err := q.Order("display_order ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *examQuestionRepo) filtered(dbc dbctx.Context, f ExamQuestionFilter) *gorm.DB {
	q := dbc.DB(r.db).Model(&types.ExamQuestion{})
	if f.LevelID != nil {
		q = q.Where("level_id = ?", *f.LevelID)
	}
	if f.SectionID != nil {
		q = q.Where("section_id = ?", *f.SectionID)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		pat := "%" + likeEscaper.Replace(s) + "%"
		q = q.Where(`(LOWER(question) LIKE ? ESCAPE '\' OR LOWER(exam_title) LIKE ? ESCAPE '\')`, pat, pat)
	}
	return q
}

func (r *examQuestionRepo) Page(dbc dbctx.Context, f ExamQuestionFilter) ([]*types.ExamQuestion, int64, error) {
	var total int64
	if err := r.filtered(dbc, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	var out []*types.ExamQuestion
	if err := r.filtered(dbc, f).
		Order("display_order ASC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *examQuestionRepo) Stats(dbc dbctx.Context, since time.Time) (*ExamQuestionStats, error) {
	out := &ExamQuestionStats{ByLevel: []ExamQuestionLevelCount{}}
	t := dbc.DB(r.db)
	if err := t.Model(&types.ExamQuestion{}).Count(&out.Total).Error; err != nil {
		return nil, err
	}
	if err := t.Model(&types.ExamQuestion{}).Where("is_active = ?", true).Count(&out.Active).Error; err != nil {
		return nil, err
	}
	if err := t.Model(&types.ExamQuestion{}).Where("created_at >= ?", since).Count(&out.CreatedSince).Error; err != nil {
		return nil, err
	}
	if err := t.Model(&types.ExamQuestion{}).
		Select("level_id, COUNT(*) AS count").
		Group("level_id").
		Order("count DESC").
		Scan(&out.ByLevel).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *examQuestionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.ExamQuestion{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *examQuestionRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.ExamQuestion{}).Error
}
