package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type Repos struct {
	Level        repos.LevelRepo
	Section      repos.SectionRepo
	Lesson       repos.LessonRepo
	UserProgress repos.UserProgressRepo
	ExamQuestion repos.ExamQuestionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Level:        repos.NewLevelRepo(db, log),
		Section:      repos.NewSectionRepo(db, log),
		Lesson:       repos.NewLessonRepo(db, log),
		UserProgress: repos.NewUserProgressRepo(db, log),
		ExamQuestion: repos.NewExamQuestionRepo(db, log),
	}
}
