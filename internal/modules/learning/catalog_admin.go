package learning

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

// Admin inputs use pointers so that updates only touch provided fields.

type LevelInput struct {
	LevelName        *string   `json:"level_name"`
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	LevelOutcome     *string   `json:"level_outcome"`
	BannerImage      *string   `json:"banner_image"`
	WhatYouWillLearn *[]string `json:"what_you_will_learn"`
	IsFree           *bool     `json:"is_free"`
	DisplayOrder     *int      `json:"display_order"`
	IsActive         *bool     `json:"is_active"`
}

type SectionInput struct {
	Name         *string `json:"name"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

type LessonInput struct {
	Title         *string               `json:"title"`
	Description   *string               `json:"description"`
	LessonType    *types.LessonType     `json:"lesson_type"`
	XPPoints      *int                  `json:"xp_points"`
	DisplayOrder  *int                  `json:"display_order"`
	IsLocked      *bool                 `json:"is_locked"`
	IsActive      *bool                 `json:"is_active"`
	ContentBlocks *[]types.ContentBlock `json:"content_blocks"`
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func cleanOutcomes(in []string) []string {
	out := lo.Filter(lo.Map(in, func(s string, _ int) string { return strings.TrimSpace(s) }),
		func(s string, _ int) bool { return s != "" })
	if out == nil {
		return []string{}
	}
	return out
}

func checkDisplayOrder(p *int) error {
	if p != nil && *p < 1 {
		return apierr.Validation("invalid_display_order", "display_order must be at least 1")
	}
	return nil
}

// ---------- Levels ----------

func (u Usecases) CreateLevel(ctx context.Context, in LevelInput) (*LevelView, error) {
	ctx, span := tracer.Start(ctx, "learning.CreateLevel")
	defer span.End()

	name := trimmed(in.LevelName)
	title := trimmed(in.Title)
	if name == "" || title == "" || trimmed(in.Description) == "" || trimmed(in.LevelOutcome) == "" {
		return nil, apierr.Validation("missing_fields", "level_name, title, description and level_outcome are required")
	}
	if err := checkDisplayOrder(in.DisplayOrder); err != nil {
		return nil, err
	}

	row := &types.Level{
		LevelName:    name,
		Title:        title,
		Description:  *in.Description,
		LevelOutcome: *in.LevelOutcome,
		BannerImage:  trimmed(in.BannerImage),
		IsFree:       lo.FromPtrOr(in.IsFree, false),
		DisplayOrder: lo.FromPtrOr(in.DisplayOrder, 1),
		IsActive:     lo.FromPtrOr(in.IsActive, true),
	}
	row.WhatYouWillLearn = datatypes.NewJSONType(cleanOutcomes(lo.FromPtr(in.WhatYouWillLearn)))

	if err := u.deps.Levels.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, apierr.Conflict("level_name_taken", fmt.Sprintf("a level named %q already exists", name))
		}
		return nil, apierr.Internal("create_level_failed", err)
	}
	u.invalidateCatalog(ctx)
	u.deps.Log.Info("level created", "level_id", row.ID, "level_name", name)
	v := levelView(row)
	return &v, nil
}

// ListLevelsAdmin returns every level, active or not, with section counts
// from a single grouped query.
func (u Usecases) ListLevelsAdmin(ctx context.Context) ([]LevelView, error) {
	ctx, span := tracer.Start(ctx, "learning.ListLevelsAdmin")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	rows, err := u.deps.Levels.List(dbc, false)
	if err != nil {
		return nil, apierr.Internal("list_levels_failed", err)
	}
	counts, err := u.deps.Sections.CountByLevelIDs(dbc, lo.Map(rows, func(l *types.Level, _ int) uuid.UUID { return l.ID }))
	if err != nil {
		return nil, apierr.Internal("count_sections_failed", err)
	}
	return lo.Map(rows, func(l *types.Level, _ int) LevelView {
		v := levelView(l)
		v.SectionCount = lo.ToPtr(counts[l.ID])
		return v
	}), nil
}

func (u Usecases) GetLevelAdmin(ctx context.Context, id uuid.UUID) (*LevelDetail, error) {
	ctx, span := tracer.Start(ctx, "learning.GetLevelAdmin")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	level, err := u.requireLevel(dbc, id)
	if err != nil {
		return nil, err
	}
	sections, err := u.sectionViewsWithCounts(dbc, &id)
	if err != nil {
		return nil, err
	}
	v := levelView(level)
	v.SectionCount = lo.ToPtr(int64(len(sections)))
	return &LevelDetail{Level: v, Sections: sections}, nil
}

func (u Usecases) UpdateLevel(ctx context.Context, id uuid.UUID, in LevelInput) (*LevelView, error) {
	ctx, span := tracer.Start(ctx, "learning.UpdateLevel")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	if _, err := u.requireLevel(dbc, id); err != nil {
		return nil, err
	}
	if err := checkDisplayOrder(in.DisplayOrder); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.LevelName != nil {
		name := trimmed(in.LevelName)
		if name == "" {
			return nil, apierr.Validation("invalid_level_name", "level_name cannot be empty")
		}
		updates["level_name"] = name
	}
	if in.Title != nil {
		title := trimmed(in.Title)
		if title == "" {
			return nil, apierr.Validation("invalid_title", "title cannot be empty")
		}
		updates["title"] = title
	}
	if in.Description != nil && trimmed(in.Description) != "" {
		updates["description"] = *in.Description
	}
	if in.LevelOutcome != nil && trimmed(in.LevelOutcome) != "" {
		updates["level_outcome"] = *in.LevelOutcome
	}
	if in.BannerImage != nil {
		updates["banner_image"] = trimmed(in.BannerImage)
	}
	if in.WhatYouWillLearn != nil {
		updates["what_you_will_learn"] = datatypes.NewJSONType(cleanOutcomes(*in.WhatYouWillLearn))
	}
	if in.IsFree != nil {
		updates["is_free"] = *in.IsFree
	}
	if in.DisplayOrder != nil {
		updates["display_order"] = *in.DisplayOrder
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if err := u.deps.Levels.UpdateFields(dbc, id, updates); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, apierr.Conflict("level_name_taken", fmt.Sprintf("a level named %q already exists", updates["level_name"]))
		}
		return nil, apierr.Internal("update_level_failed", err)
	}
	u.invalidateCatalog(ctx)
	return u.reloadLevel(dbc, id)
}

func (u Usecases) ToggleLevel(ctx context.Context, id uuid.UUID) (*LevelView, error) {
	ctx, span := tracer.Start(ctx, "learning.ToggleLevel")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	level, err := u.requireLevel(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := u.deps.Levels.UpdateFields(dbc, id, map[string]interface{}{"is_active": !level.IsActive}); err != nil {
		return nil, apierr.Internal("toggle_level_failed", err)
	}
	u.invalidateCatalog(ctx)
	return u.reloadLevel(dbc, id)
}

// DeleteLevel removes the level with all of its sections and lessons in one
// transaction.
func (u Usecases) DeleteLevel(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "learning.DeleteLevel", trace.WithAttributes(
		attribute.String("level_id", id.String()),
	))
	defer span.End()

	if _, err := u.requireLevel(dbctx.Context{Ctx: ctx}, id); err != nil {
		return err
	}
	err := u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := u.deps.Lessons.DeleteByLevelID(dbc, id); err != nil {
			return err
		}
		if err := u.deps.Sections.DeleteByLevelID(dbc, id); err != nil {
			return err
		}
		return u.deps.Levels.Delete(dbc, id)
	})
	if err != nil {
		return apierr.Internal("delete_level_failed", err)
	}
	u.invalidateCatalog(ctx)
	u.deps.Log.Info("level deleted", "level_id", id)
	return nil
}

func (u Usecases) requireLevel(dbc dbctx.Context, id uuid.UUID) (*types.Level, error) {
	level, err := u.deps.Levels.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("load_level_failed", err)
	}
	if level == nil {
		return nil, apierr.NotFound("level_not_found", "level not found")
	}
	return level, nil
}

func (u Usecases) reloadLevel(dbc dbctx.Context, id uuid.UUID) (*LevelView, error) {
	level, err := u.requireLevel(dbc, id)
	if err != nil {
		return nil, err
	}
	v := levelView(level)
	return &v, nil
}

// ---------- Sections ----------

// ListSectionsAdmin returns all sections, optionally scoped to one level,
// with lesson counts from a single grouped query.
func (u Usecases) ListSectionsAdmin(ctx context.Context, levelID *uuid.UUID) ([]SectionView, error) {
	ctx, span := tracer.Start(ctx, "learning.ListSectionsAdmin")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	if levelID != nil {
		if _, err := u.requireLevel(dbc, *levelID); err != nil {
			return nil, err
		}
	}
	return u.sectionViewsWithCounts(dbc, levelID)
}

func (u Usecases) sectionViewsWithCounts(dbc dbctx.Context, levelID *uuid.UUID) ([]SectionView, error) {
	rows, err := u.deps.Sections.List(dbc, levelID, false)
	if err != nil {
		return nil, apierr.Internal("list_sections_failed", err)
	}
	counts, err := u.deps.Lessons.CountBySectionIDs(dbc, lo.Map(rows, func(s *types.Section, _ int) uuid.UUID { return s.ID }))
	if err != nil {
		return nil, apierr.Internal("count_lessons_failed", err)
	}
	return lo.Map(rows, func(s *types.Section, _ int) SectionView {
		v := sectionView(s)
		v.LessonCount = lo.ToPtr(counts[s.ID])
		return v
	}), nil
}

func (u Usecases) CreateSection(ctx context.Context, levelID uuid.UUID, in SectionInput) (*SectionView, error) {
	ctx, span := tracer.Start(ctx, "learning.CreateSection")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	if _, err := u.requireLevel(dbc, levelID); err != nil {
		return nil, err
	}
	name := trimmed(in.Name)
	if name == "" {
		return nil, apierr.Validation("missing_fields", "name is required")
	}
	if err := checkDisplayOrder(in.DisplayOrder); err != nil {
		return nil, err
	}
	row := &types.Section{
		LevelID:      levelID,
		Name:         name,
		DisplayOrder: lo.FromPtrOr(in.DisplayOrder, 1),
		IsActive:     lo.FromPtrOr(in.IsActive, true),
	}
	if err := u.deps.Sections.Create(dbc, row); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, apierr.Conflict("section_name_taken", fmt.Sprintf("section %q already exists in this level", name))
		}
		return nil, apierr.Internal("create_section_failed", err)
	}
	u.invalidateCatalog(ctx)
	v := sectionView(row)
	return &v, nil
}

func (u Usecases) GetSectionAdmin(ctx context.Context, id uuid.UUID) (*SectionDetail, error) {
	ctx, span := tracer.Start(ctx, "learning.GetSectionAdmin")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	section, err := u.requireSection(dbc, id)
	if err != nil {
		return nil, err
	}
	lessons, err := u.deps.Lessons.List(dbc, repos.LessonFilter{SectionIDs: []uuid.UUID{id}})
	if err != nil {
		return nil, apierr.Internal("list_lessons_failed", err)
	}
	v := sectionView(section)
	v.LessonCount = lo.ToPtr(int64(len(lessons)))
	return &SectionDetail{Section: v, Lessons: lessonViews(lessons)}, nil
}

func (u Usecases) UpdateSection(ctx context.Context, id uuid.UUID, in SectionInput) (*SectionView, error) {
	ctx, span := tracer.Start(ctx, "learning.UpdateSection")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	if _, err := u.requireSection(dbc, id); err != nil {
		return nil, err
	}
	if err := checkDisplayOrder(in.DisplayOrder); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := trimmed(in.Name)
		if name == "" {
			return nil, apierr.Validation("invalid_name", "name cannot be empty")
		}
		updates["name"] = name
	}
	if in.DisplayOrder != nil {
		updates["display_order"] = *in.DisplayOrder
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := u.deps.Sections.UpdateFields(dbc, id, updates); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, apierr.Conflict("section_name_taken", fmt.Sprintf("section %q already exists in this level", updates["name"]))
		}
		return nil, apierr.Internal("update_section_failed", err)
	}
	u.invalidateCatalog(ctx)
	return u.reloadSection(dbc, id)
}

func (u Usecases) ToggleSection(ctx context.Context, id uuid.UUID) (*SectionView, error) {
	ctx, span := tracer.Start(ctx, "learning.ToggleSection")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	section, err := u.requireSection(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := u.deps.Sections.UpdateFields(dbc, id, map[string]interface{}{"is_active": !section.IsActive}); err != nil {
		return nil, apierr.Internal("toggle_section_failed", err)
	}
	u.invalidateCatalog(ctx)
	return u.reloadSection(dbc, id)
}

// DeleteSection removes the section and its lessons in one transaction.
func (u Usecases) DeleteSection(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "learning.DeleteSection")
	defer span.End()

	if _, err := u.requireSection(dbctx.Context{Ctx: ctx}, id); err != nil {
		return err
	}
	err := u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := u.deps.Lessons.DeleteBySectionIDs(dbc, []uuid.UUID{id}); err != nil {
			return err
		}
		return u.deps.Sections.Delete(dbc, id)
	})
	if err != nil {
		return apierr.Internal("delete_section_failed", err)
	}
	u.invalidateCatalog(ctx)
	return nil
}

func (u Usecases) requireSection(dbc dbctx.Context, id uuid.UUID) (*types.Section, error) {
	section, err := u.deps.Sections.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("load_section_failed", err)
	}
	if section == nil {
		return nil, apierr.NotFound("section_not_found", "section not found")
	}
	return section, nil
}

func (u Usecases) reloadSection(dbc dbctx.Context, id uuid.UUID) (*SectionView, error) {
	section, err := u.requireSection(dbc, id)
	if err != nil {
		return nil, err
	}
	v := sectionView(section)
	return &v, nil
}

// ---------- Lessons ----------

func (u Usecases) ListLessonsAdmin(ctx context.Context, levelID, sectionID *uuid.UUID) ([]LessonView, error) {
	ctx, span := tracer.Start(ctx, "learning.ListLessonsAdmin")
	defer span.End()

	f := repos.LessonFilter{LevelID: levelID}
	if sectionID != nil {
		f.SectionIDs = []uuid.UUID{*sectionID}
	}
	rows, err := u.deps.Lessons.List(dbctx.Context{Ctx: ctx}, f)
	if err != nil {
		return nil, apierr.Internal("list_lessons_failed", err)
	}
	return lessonViews(rows), nil
}

func validateBlocks(blocks []types.ContentBlock) error {
	if err := types.ValidateBlocks(blocks); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_content_blocks", err)
	}
	return nil
}

func (u Usecases) CreateLesson(ctx context.Context, sectionID uuid.UUID, in LessonInput) (*LessonDetail, error) {
	ctx, span := tracer.Start(ctx, "learning.CreateLesson")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	section, err := u.requireSection(dbc, sectionID)
	if err != nil {
		return nil, err
	}

	title := trimmed(in.Title)
	if title == "" || trimmed(in.Description) == "" || in.LessonType == nil {
		return nil, apierr.Validation("missing_fields", "title, description and lesson_type are required")
	}
	if !in.LessonType.Valid() {
		return nil, apierr.Validation("invalid_lesson_type", fmt.Sprintf("unknown lesson_type %q", *in.LessonType))
	}
	if in.XPPoints != nil && *in.XPPoints < 0 {
		return nil, apierr.Validation("invalid_xp_points", "xp_points cannot be negative")
	}
	if err := checkDisplayOrder(in.DisplayOrder); err != nil {
		return nil, err
	}
	blocks := lo.FromPtr(in.ContentBlocks)
	if blocks == nil {
		blocks = []types.ContentBlock{}
	}
	if err := validateBlocks(blocks); err != nil {
		return nil, err
	}

	row := &types.Lesson{
		LevelID:       section.LevelID,
		SectionID:     section.ID,
		Title:         title,
		Description:   *in.Description,
		LessonType:    *in.LessonType,
		XPPoints:      lo.FromPtrOr(in.XPPoints, types.DefaultXPPoints),
		DisplayOrder:  lo.FromPtrOr(in.DisplayOrder, 1),
		IsLocked:      lo.FromPtrOr(in.IsLocked, true),
		IsActive:      lo.FromPtrOr(in.IsActive, true),
		ContentBlocks: datatypes.NewJSONType(blocks),
	}
	if err := u.deps.Lessons.Create(dbc, row); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, apierr.Conflict("lesson_order_taken", fmt.Sprintf("display_order %d is already used in this section", row.DisplayOrder))
		}
		return nil, apierr.Internal("create_lesson_failed", err)
	}
	u.invalidateCatalog(ctx)
	u.deps.Log.Info("lesson created", "lesson_id", row.ID, "section_id", section.ID, "blocks", len(blocks))
	d := lessonDetail(row)
	return &d, nil
}

func (u Usecases) GetLessonAdmin(ctx context.Context, id uuid.UUID) (*LessonDetail, error) {
	ctx, span := tracer.Start(ctx, "learning.GetLessonAdmin")
	defer span.End()

	lesson, err := u.requireLesson(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	d := lessonDetail(lesson)
	return &d, nil
}

// UpdateLesson applies provided fields. Content blocks are replaced as a
// whole when present.
func (u Usecases) UpdateLesson(ctx context.Context, id uuid.UUID, in LessonInput) (*LessonDetail, error) {
	ctx, span := tracer.Start(ctx, "learning.UpdateLesson")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	if _, err := u.requireLesson(dbc, id); err != nil {
		return nil, err
	}
	if err := checkDisplayOrder(in.DisplayOrder); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := trimmed(in.Title)
		if title == "" {
			return nil, apierr.Validation("invalid_title", "title cannot be empty")
		}
		updates["title"] = title
	}
	if in.Description != nil && trimmed(in.Description) != "" {
		updates["description"] = *in.Description
	}
	if in.LessonType != nil {
		if !in.LessonType.Valid() {
			return nil, apierr.Validation("invalid_lesson_type", fmt.Sprintf("unknown lesson_type %q", *in.LessonType))
		}
		updates["lesson_type"] = *in.LessonType
	}
	if in.XPPoints != nil {
		if *in.XPPoints < 0 {
			return nil, apierr.Validation("invalid_xp_points", "xp_points cannot be negative")
		}
		updates["xp_points"] = *in.XPPoints
	}
	if in.DisplayOrder != nil {
		updates["display_order"] = *in.DisplayOrder
	}
	if in.IsLocked != nil {
		updates["is_locked"] = *in.IsLocked
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.ContentBlocks != nil {
		blocks := *in.ContentBlocks
		if blocks == nil {
			blocks = []types.ContentBlock{}
		}
		if err := validateBlocks(blocks); err != nil {
			return nil, err
		}
		updates["content_blocks"] = datatypes.NewJSONType(blocks)
	}

	if err := u.deps.Lessons.UpdateFields(dbc, id, updates); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, apierr.Conflict("lesson_order_taken", fmt.Sprintf("display_order %v is already used in this section", updates["display_order"]))
		}
		return nil, apierr.Internal("update_lesson_failed", err)
	}
	u.invalidateCatalog(ctx)
	return u.GetLessonAdmin(ctx, id)
}

func (u Usecases) ToggleLesson(ctx context.Context, id uuid.UUID) (*LessonDetail, error) {
	ctx, span := tracer.Start(ctx, "learning.ToggleLesson")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	lesson, err := u.requireLesson(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := u.deps.Lessons.UpdateFields(dbc, id, map[string]interface{}{"is_active": !lesson.IsActive}); err != nil {
		return nil, apierr.Internal("toggle_lesson_failed", err)
	}
	u.invalidateCatalog(ctx)
	return u.GetLessonAdmin(ctx, id)
}

func (u Usecases) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "learning.DeleteLesson")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	if _, err := u.requireLesson(dbc, id); err != nil {
		return err
	}
	if err := u.deps.Lessons.Delete(dbc, id); err != nil {
		return apierr.Internal("delete_lesson_failed", err)
	}
	u.invalidateCatalog(ctx)
	return nil
}

func (u Usecases) requireLesson(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	lesson, err := u.deps.Lessons.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("load_lesson_failed", err)
	}
	if lesson == nil {
		return nil, apierr.NotFound("lesson_not_found", "lesson not found")
	}
	return lesson, nil
}
