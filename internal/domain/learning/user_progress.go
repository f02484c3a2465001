package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProgress is append-only: one row per (user, lesson), created on the
// first successful completion. SectionID, LevelID and XPEarned are copied
// from the lesson at that moment.
type UserProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"column:user_id;not null;uniqueIndex:idx_user_progress_user_lesson,priority:1;index:idx_user_progress_user_level,priority:1" json:"user_id"`
	LessonID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_progress_user_lesson,priority:2" json:"lesson_id"`
	SectionID   uuid.UUID `gorm:"type:uuid;not null" json:"section_id"`
	LevelID     uuid.UUID `gorm:"type:uuid;not null;index:idx_user_progress_user_level,priority:2" json:"level_id"`
	XPEarned    int       `gorm:"column:xp_earned;not null" json:"xp_earned"`
	CompletedAt time.Time `gorm:"column:completed_at;not null" json:"completed_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }

func (p *UserProgress) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CompletedAt.IsZero() {
		p.CompletedAt = time.Now().UTC()
	}
	return nil
}
