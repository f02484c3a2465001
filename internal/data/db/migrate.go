package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/levelup-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Catalog
		// =========================
		&types.Level{},
		&types.Section{},
		&types.Lesson{},

		// =========================
		// Progress ledger
		// =========================
		&types.UserProgress{},

		// =========================
		// Exams
		// =========================
		&types.ExamQuestion{},
	)
}
