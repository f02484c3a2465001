package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/dberr"
	"github.com/yungbote/levelup-backend/internal/data/repos/learning"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

var ErrDuplicate = dberr.ErrDuplicate

type LevelRepo = learning.LevelRepo
type SectionRepo = learning.SectionRepo
type LessonRepo = learning.LessonRepo
type LessonFilter = learning.LessonFilter
type UserProgressRepo = learning.UserProgressRepo
type ExamQuestionRepo = learning.ExamQuestionRepo
type ExamQuestionFilter = learning.ExamQuestionFilter
type ExamQuestionStats = learning.ExamQuestionStats
type ExamQuestionLevelCount = learning.ExamQuestionLevelCount

func NewLevelRepo(db *gorm.DB, log *logger.Logger) LevelRepo {
	return learning.NewLevelRepo(db, log)
}

func NewSectionRepo(db *gorm.DB, log *logger.Logger) SectionRepo {
	return learning.NewSectionRepo(db, log)
}

func NewLessonRepo(db *gorm.DB, log *logger.Logger) LessonRepo {
	return learning.NewLessonRepo(db, log)
}

func NewUserProgressRepo(db *gorm.DB, log *logger.Logger) UserProgressRepo {
	return learning.NewUserProgressRepo(db, log)
}

func NewExamQuestionRepo(db *gorm.DB, log *logger.Logger) ExamQuestionRepo {
	return learning.NewExamQuestionRepo(db, log)
}
