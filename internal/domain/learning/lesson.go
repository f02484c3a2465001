package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LessonType string

const (
	LessonTypeVideo     LessonType = "video"
	LessonTypeFlashcard LessonType = "flashcard"
	LessonTypeExercise  LessonType = "exercise"
	LessonTypeSpeaking  LessonType = "speaking"
	LessonTypeQuiz      LessonType = "quiz"
	LessonTypeMixed     LessonType = "mixed"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonTypeVideo, LessonTypeFlashcard, LessonTypeExercise,
		LessonTypeSpeaking, LessonTypeQuiz, LessonTypeMixed:
		return true
	}
	return false
}

const DefaultXPPoints = 50

// Lesson.LevelID is copied from the owning Section on every write and is
// never set independently.
type Lesson struct {
	ID            uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	LevelID       uuid.UUID                          `gorm:"type:uuid;not null;index" json:"level_id"`
	SectionID     uuid.UUID                          `gorm:"type:uuid;not null;index;uniqueIndex:idx_lesson_section_order,priority:1" json:"section_id"`
	Section       *Section                           `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"-"`
	Title         string                             `gorm:"column:title;not null" json:"title"`
	Description   string                             `gorm:"column:description;type:text" json:"description"`
	LessonType    LessonType                         `gorm:"column:lesson_type;not null" json:"lesson_type"`
	XPPoints      int                                `gorm:"column:xp_points;not null" json:"xp_points"`
	DisplayOrder  int                                `gorm:"column:display_order;not null;uniqueIndex:idx_lesson_section_order,priority:2" json:"display_order"`
	IsLocked      bool                               `gorm:"column:is_locked;not null" json:"is_locked"`
	IsActive      bool                               `gorm:"column:is_active;not null" json:"is_active"`
	ContentBlocks datatypes.JSONType[[]ContentBlock] `gorm:"column:content_blocks" json:"content_blocks"`
	CreatedAt     time.Time                          `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time                          `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Blocks returns the content blocks in rendering order.
func (l *Lesson) Blocks() []ContentBlock {
	return SortBlocks(l.ContentBlocks.Data())
}
