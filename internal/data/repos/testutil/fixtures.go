package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/domain/learning"
)

func SeedLevel(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, order int) *types.Level {
	tb.Helper()
	l := &types.Level{
		ID:               uuid.New(),
		LevelName:        name,
		Title:            name + " title",
		Description:      "description",
		LevelOutcome:     "outcome",
		WhatYouWillLearn: datatypes.NewJSONType([]string{"greetings"}),
		DisplayOrder:     order,
		IsActive:         true,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed level: %v", err)
	}
	return l
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, levelID uuid.UUID, name string, order int) *types.Section {
	tb.Helper()
	s := &types.Section{
		ID:           uuid.New(),
		LevelID:      levelID,
		Name:         name,
		DisplayOrder: order,
		IsActive:     true,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

// SeedLesson creates an active lesson worth 50 XP carrying one video block.
func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, sec *types.Section, title string, order int) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:           uuid.New(),
		LevelID:      sec.LevelID,
		SectionID:    sec.ID,
		Title:        title,
		Description:  "description",
		LessonType:   learning.LessonTypeVideo,
		XPPoints:     learning.DefaultXPPoints,
		DisplayOrder: order,
		IsLocked:     true,
		IsActive:     true,
		ContentBlocks: datatypes.NewJSONType([]types.ContentBlock{
			learning.NewBlock(1, learning.VideoBlock{VideoURL: "https://video.example/" + title}),
		}),
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, userID string, lesson *types.Lesson) *types.UserProgress {
	tb.Helper()
	p := &types.UserProgress{
		ID:        uuid.New(),
		UserID:    userID,
		LessonID:  lesson.ID,
		SectionID: lesson.SectionID,
		LevelID:   lesson.LevelID,
		XPEarned:  lesson.XPPoints,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}

func SeedExamQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, sec *types.Section, text string, options []string, correct, order int) *types.ExamQuestion {
	tb.Helper()
	q := &types.ExamQuestion{
		ID:           uuid.New(),
		ExamTitle:    "Placement",
		LevelID:      sec.LevelID,
		SectionID:    sec.ID,
		Question:     text,
		Options:      datatypes.NewJSONType(options),
		Correct:      correct,
		Explanation:  "because",
		TimeLimit:    learning.DefaultTimeLimit,
		IsActive:     true,
		DisplayOrder: order,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed exam question: %v", err)
	}
	return q
}
