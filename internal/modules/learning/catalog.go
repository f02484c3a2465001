package learning

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/cache"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

const (
	catalogCachePrefix = "catalog:public:"
	// catalogGenKey lives outside catalogCachePrefix so DeletePrefix
	// never resets it.
	catalogGenKey = "catalog:gen:public"
)

func publicLevelsKey() string { return "levels" }

func publicSectionsKey(levelID uuid.UUID) string {
	return fmt.Sprintf("levels:%s:sections", levelID)
}

func generationKey(gen int64, key string) string {
	return fmt.Sprintf("%sg%d:%s", catalogCachePrefix, gen, key)
}

// ListLevels returns active levels in display order.
func (u Usecases) ListLevels(ctx context.Context) ([]LevelView, error) {
	ctx, span := tracer.Start(ctx, "learning.ListLevels")
	defer span.End()

	return cachedRead(ctx, u, publicLevelsKey(), func() ([]LevelView, error) {
		rows, err := u.deps.Levels.List(dbctx.Context{Ctx: ctx}, true)
		if err != nil {
			return nil, apierr.Internal("list_levels_failed", err)
		}
		return lo.Map(rows, func(l *types.Level, _ int) LevelView { return levelView(l) }), nil
	})
}

// ListSections returns the active sections of an active level, each with
// its active lessons (blocks stripped). Sections and lessons are loaded with
// one query each.
func (u Usecases) ListSections(ctx context.Context, levelID uuid.UUID) ([]PublicSection, error) {
	ctx, span := tracer.Start(ctx, "learning.ListSections", trace.WithAttributes(
		attribute.String("level_id", levelID.String()),
	))
	defer span.End()

	return cachedRead(ctx, u, publicSectionsKey(levelID), func() ([]PublicSection, error) {
		dbc := dbctx.Context{Ctx: ctx}
		level, err := u.deps.Levels.GetByID(dbc, levelID)
		if err != nil {
			return nil, apierr.Internal("load_level_failed", err)
		}
		if level == nil || !level.IsActive {
			return nil, apierr.NotFound("level_not_found", "level not found")
		}

		sections, err := u.deps.Sections.List(dbc, &levelID, true)
		if err != nil {
			return nil, apierr.Internal("list_sections_failed", err)
		}
		lessons, err := u.deps.Lessons.List(dbc, repos.LessonFilter{
			SectionIDs: lo.Map(sections, func(s *types.Section, _ int) uuid.UUID { return s.ID }),
			ActiveOnly: true,
		})
		if err != nil {
			return nil, apierr.Internal("list_lessons_failed", err)
		}
		bySection := lo.GroupBy(lessons, func(l *types.Lesson) uuid.UUID { return l.SectionID })

		out := make([]PublicSection, 0, len(sections))
		for _, s := range sections {
			views := lessonViews(bySection[s.ID])
			if views == nil {
				views = []LessonView{}
			}
			out = append(out, PublicSection{SectionView: sectionView(s), Lessons: views})
		}
		return out, nil
	})
}

// GetLesson returns an active lesson with its blocks for viewerID, which is
// empty for anonymous viewers. Locked lessons are rejected with Forbidden.
func (u Usecases) GetLesson(ctx context.Context, viewerID string, lessonID uuid.UUID) (*LessonPage, error) {
	ctx, span := tracer.Start(ctx, "learning.GetLesson", trace.WithAttributes(
		attribute.String("lesson_id", lessonID.String()),
	))
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	lesson, err := u.deps.Lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, apierr.Internal("load_lesson_failed", err)
	}
	if lesson == nil || !lesson.IsActive {
		return nil, apierr.NotFound("lesson_not_found", "lesson not found")
	}
	if err := u.Gate().Check(dbc, viewerID, lesson); err != nil {
		return nil, err
	}

	level, err := u.deps.Levels.GetByID(dbc, lesson.LevelID)
	if err != nil {
		return nil, apierr.Internal("load_level_failed", err)
	}
	section, err := u.deps.Sections.GetByID(dbc, lesson.SectionID)
	if err != nil {
		return nil, apierr.Internal("load_section_failed", err)
	}
	return &LessonPage{
		Lesson:  lessonDetail(lesson),
		Level:   levelSummary(level),
		Section: sectionSummary(section),
	}, nil
}

// cachedRead keys entries by the catalog generation read before load, so
// a Set that races an invalidation lands on a key no reader will use.
func cachedRead[T any](ctx context.Context, u Usecases, name string, load func() (T, error)) (T, error) {
	gen, err := u.deps.Cache.Generation(ctx, catalogGenKey)
	if err != nil {
		u.deps.Metrics.IncCatalogCache("error")
		u.deps.Log.Warn("catalog cache generation read failed", "error", err)
		return load()
	}
	key := generationKey(gen, name)

	var out T
	err = u.deps.Cache.Get(ctx, key, &out)
	switch {
	case err == nil:
		u.deps.Metrics.IncCatalogCache("hit")
		return out, nil
	case errors.Is(err, cache.ErrMiss):
		u.deps.Metrics.IncCatalogCache("miss")
	default:
		u.deps.Metrics.IncCatalogCache("error")
		u.deps.Log.Warn("catalog cache read failed", "key", key, "error", err)
	}

	out, err = load()
	if err != nil {
		return out, err
	}
	if err := u.deps.Cache.Set(ctx, key, out, u.deps.CacheTTL); err != nil {
		u.deps.Log.Warn("catalog cache write failed", "key", key, "error", err)
	}
	return out, nil
}

// invalidateCatalog retires every cached public listing by advancing the
// catalog generation. Called after any committed admin catalog change.
func (u Usecases) invalidateCatalog(ctx context.Context) {
	gen, err := u.deps.Cache.Bump(ctx, catalogGenKey)
	if err != nil {
		u.deps.Log.Warn("catalog cache generation bump failed", "error", err)
	}
	// Reclaim entries of earlier generations.
	if err := u.deps.Cache.DeletePrefix(ctx, catalogCachePrefix); err != nil {
		u.deps.Log.Warn("catalog cache invalidation failed", "generation", gen, "error", err)
	}
}
