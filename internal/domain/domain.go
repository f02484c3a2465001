package domain

import (
	"github.com/yungbote/levelup-backend/internal/domain/learning"
)

type Level = learning.Level
type Section = learning.Section
type Lesson = learning.Lesson
type LessonType = learning.LessonType
type UserProgress = learning.UserProgress
type ExamQuestion = learning.ExamQuestion

type ContentBlock = learning.ContentBlock
type BlockType = learning.BlockType
type BlockPayload = learning.BlockPayload

var (
	ErrInvalidBlock = learning.ErrInvalidBlock
	ValidateBlocks  = learning.ValidateBlocks
	SortBlocks      = learning.SortBlocks
	NewBlock        = learning.NewBlock
)

const (
	DefaultXPPoints    = learning.DefaultXPPoints
	MinQuestionOptions = learning.MinQuestionOptions
	MaxQuestionOptions = learning.MaxQuestionOptions
	MinTimeLimit       = learning.MinTimeLimit
	MaxTimeLimit       = learning.MaxTimeLimit
	DefaultTimeLimit   = learning.DefaultTimeLimit
)
