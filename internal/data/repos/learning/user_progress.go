package learning

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/dberr"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type UserProgressRepo interface {
	// Create inserts the row; a second insert for the same (user, lesson)
	// fails with dberr.ErrDuplicate.
	Create(dbc dbctx.Context, row *types.UserProgress) error
	Get(dbc dbctx.Context, userID string, lessonID uuid.UUID) (*types.UserProgress, error)
	Exists(dbc dbctx.Context, userID string, lessonID uuid.UUID) (bool, error)
	ListByUserLevel(dbc dbctx.Context, userID string, levelID uuid.UUID) ([]*types.UserProgress, error)
}

type userProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressRepo {
	return &userProgressRepo{db: db, log: baseLog.With("repo", "UserProgressRepo")}
}

func (r *userProgressRepo) Create(dbc dbctx.Context, row *types.UserProgress) error {
	return dberr.Wrap(dbc.DB(r.db).Create(row).Error)
}

func (r *userProgressRepo) Get(dbc dbctx.Context, userID string, lessonID uuid.UUID) (*types.UserProgress, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || lessonID == uuid.Nil {
		return nil, nil
	}
	var row types.UserProgress
	if err := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userProgressRepo) Exists(dbc dbctx.Context, userID string, lessonID uuid.UUID) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || lessonID == uuid.Nil {
		return false, nil
	}
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.UserProgress{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userProgressRepo) ListByUserLevel(dbc dbctx.Context, userID string, levelID uuid.UUID) ([]*types.UserProgress, error) {
	var out []*types.UserProgress
	userID = strings.TrimSpace(userID)
	if userID == "" || levelID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND level_id = ?", userID, levelID).
		Order("completed_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
