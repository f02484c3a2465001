package learning

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	types "github.com/yungbote/levelup-backend/internal/domain"
)

type LevelView struct {
	ID               uuid.UUID `json:"id"`
	LevelName        string    `json:"level_name"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	LevelOutcome     string    `json:"level_outcome"`
	BannerImage      string    `json:"banner_image"`
	WhatYouWillLearn []string  `json:"what_you_will_learn"`
	IsFree           bool      `json:"is_free"`
	DisplayOrder     int       `json:"display_order"`
	IsActive         bool      `json:"is_active"`
	SectionCount     *int64    `json:"section_count,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type SectionView struct {
	ID           uuid.UUID `json:"id"`
	LevelID      uuid.UUID `json:"level_id"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	LessonCount  *int64    `json:"lesson_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LessonView never carries content blocks; see LessonDetail.
type LessonView struct {
	ID           uuid.UUID        `json:"id"`
	LevelID      uuid.UUID        `json:"level_id"`
	SectionID    uuid.UUID        `json:"section_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	LessonType   types.LessonType `json:"lesson_type"`
	XPPoints     int              `json:"xp_points"`
	DisplayOrder int              `json:"display_order"`
	IsLocked     bool             `json:"is_locked"`
	IsActive     bool             `json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type LessonDetail struct {
	LessonView
	ContentBlocks []types.ContentBlock `json:"content_blocks"`
}

// PublicSection is an active section with its active lessons, blocks stripped.
type PublicSection struct {
	SectionView
	Lessons []LessonView `json:"lessons"`
}

type LevelSummary struct {
	ID               uuid.UUID `json:"id"`
	LevelName        string    `json:"level_name"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	LevelOutcome     string    `json:"level_outcome"`
	BannerImage      string    `json:"banner_image"`
	WhatYouWillLearn []string  `json:"what_you_will_learn"`
	IsFree           bool      `json:"is_free"`
}

type SectionSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// LessonPage is what a learner receives when opening a lesson.
type LessonPage struct {
	Lesson  LessonDetail    `json:"lesson"`
	Level   *LevelSummary   `json:"level"`
	Section *SectionSummary `json:"section"`
}

// LevelDetail is the admin view of one level with its sections.
type LevelDetail struct {
	Level    LevelView     `json:"level"`
	Sections []SectionView `json:"sections"`
}

// SectionDetail is the admin view of one section with its lessons.
type SectionDetail struct {
	Section SectionView  `json:"section"`
	Lessons []LessonView `json:"lessons"`
}

func levelView(l *types.Level) LevelView {
	return LevelView{
		ID:               l.ID,
		LevelName:        l.LevelName,
		Title:            l.Title,
		Description:      l.Description,
		LevelOutcome:     l.LevelOutcome,
		BannerImage:      l.BannerImage,
		WhatYouWillLearn: l.Outcomes(),
		IsFree:           l.IsFree,
		DisplayOrder:     l.DisplayOrder,
		IsActive:         l.IsActive,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func levelSummary(l *types.Level) *LevelSummary {
	if l == nil {
		return nil
	}
	return &LevelSummary{
		ID:               l.ID,
		LevelName:        l.LevelName,
		Title:            l.Title,
		Description:      l.Description,
		LevelOutcome:     l.LevelOutcome,
		BannerImage:      l.BannerImage,
		WhatYouWillLearn: l.Outcomes(),
		IsFree:           l.IsFree,
	}
}

func sectionView(s *types.Section) SectionView {
	return SectionView{
		ID:           s.ID,
		LevelID:      s.LevelID,
		Name:         s.Name,
		DisplayOrder: s.DisplayOrder,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func sectionSummary(s *types.Section) *SectionSummary {
	if s == nil {
		return nil
	}
	return &SectionSummary{ID: s.ID, Name: s.Name}
}

func lessonView(l *types.Lesson) LessonView {
	return LessonView{
		ID:           l.ID,
		LevelID:      l.LevelID,
		SectionID:    l.SectionID,
		Title:        l.Title,
		Description:  l.Description,
		LessonType:   l.LessonType,
		XPPoints:     l.XPPoints,
		DisplayOrder: l.DisplayOrder,
		IsLocked:     l.IsLocked,
		IsActive:     l.IsActive,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func lessonDetail(l *types.Lesson) LessonDetail {
	blocks := l.Blocks()
	if blocks == nil {
		blocks = []types.ContentBlock{}
	}
	return LessonDetail{LessonView: lessonView(l), ContentBlocks: blocks}
}

func lessonViews(rows []*types.Lesson) []LessonView {
	return lo.Map(rows, func(l *types.Lesson, _ int) LessonView { return lessonView(l) })
}
