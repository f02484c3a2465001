package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MinQuestionOptions = 2
	MaxQuestionOptions = 6
	MinTimeLimit       = 1
	MaxTimeLimit       = 120
	DefaultTimeLimit   = 15
)

// ExamQuestion is a standalone timed exam item scoped to a Level and one
// of its Sections. It has no relation to quiz content blocks.
type ExamQuestion struct {
	ID           uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	ExamTitle    string                       `gorm:"column:exam_title;not null;index" json:"exam_title"`
	LevelID      uuid.UUID                    `gorm:"type:uuid;not null;index:idx_exam_question_scope,priority:1" json:"level_id"`
	SectionID    uuid.UUID                    `gorm:"type:uuid;not null;index:idx_exam_question_scope,priority:2" json:"section_id"`
	Question     string                       `gorm:"column:question;type:text;not null" json:"question"`
	Options      datatypes.JSONType[[]string] `gorm:"column:options;not null" json:"options"`
	Correct      int                          `gorm:"column:correct;not null" json:"correct"`
	Explanation  string                       `gorm:"column:explanation;type:text" json:"explanation"`
	TimeLimit    int                          `gorm:"column:time_limit;not null" json:"time_limit"`
	IsActive     bool                         `gorm:"column:is_active;not null;index:idx_exam_question_scope,priority:3" json:"is_active"`
	DisplayOrder int                          `gorm:"column:display_order;not null" json:"display_order"`
	CreatedAt    time.Time                    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                    `gorm:"not null" json:"updated_at"`
}

func (ExamQuestion) TableName() string { return "exam_question" }

func (q *ExamQuestion) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// OptionText returns the option at idx, or ok=false when idx is out of range.
func (q *ExamQuestion) OptionText(idx int) (string, bool) {
	opts := q.Options.Data()
	if idx < 0 || idx >= len(opts) {
		return "", false
	}
	return opts[idx], true
}
