package learning

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

type ProgressView struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	LessonID    uuid.UUID `json:"lesson_id"`
	SectionID   uuid.UUID `json:"section_id"`
	LevelID     uuid.UUID `json:"level_id"`
	XPEarned    int       `json:"xp_earned"`
	CompletedAt time.Time `json:"completed_at"`
}

type CompleteLessonOutput struct {
	Progress    ProgressView `json:"progress"`
	AlreadyDone bool         `json:"already_done"`
	XPAwarded   int          `json:"xp_awarded"`
	Message     string       `json:"message"`
}

// Status is 201 for a first completion and 200 for a repeat.
func (o CompleteLessonOutput) Status() int {
	if o.AlreadyDone {
		return http.StatusOK
	}
	return http.StatusCreated
}

type LevelProgress struct {
	LevelID            uuid.UUID   `json:"level_id"`
	CompletedLessonIDs []uuid.UUID `json:"completed_lesson_ids"`
	CompletedCount     int         `json:"completed_count"`
	TotalXP            int         `json:"total_xp"`
}

func progressView(p *types.UserProgress) ProgressView {
	return ProgressView{
		ID:          p.ID,
		UserID:      p.UserID,
		LessonID:    p.LessonID,
		SectionID:   p.SectionID,
		LevelID:     p.LevelID,
		XPEarned:    p.XPEarned,
		CompletedAt: p.CompletedAt,
	}
}

// CompleteLesson records that userID finished lessonID and awards the
// lesson's current XP once. The unique (user, lesson) index decides races:
// whoever loses the insert gets the stored row back with AlreadyDone set.
func (u Usecases) CompleteLesson(ctx context.Context, userID string, lessonID uuid.UUID) (*CompleteLessonOutput, error) {
	ctx, span := tracer.Start(ctx, "learning.CompleteLesson", trace.WithAttributes(
		attribute.String("lesson_id", lessonID.String()),
	))
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))
	}

	dbc := dbctx.Context{Ctx: ctx}
	lesson, err := u.deps.Lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, apierr.Internal("load_lesson_failed", err)
	}
	if lesson == nil || !lesson.IsActive {
		return nil, apierr.NotFound("lesson_not_found", "lesson not found")
	}
	if err := u.Gate().Check(dbc, userID, lesson); err != nil {
		if apierr.StatusOf(err) == http.StatusForbidden {
			u.deps.Metrics.IncLessonCompletion(observability.CompletionForbidden)
		}
		return nil, err
	}

	row := &types.UserProgress{
		UserID:      userID,
		LessonID:    lesson.ID,
		SectionID:   lesson.SectionID,
		LevelID:     lesson.LevelID,
		XPEarned:    lesson.XPPoints,
		CompletedAt: u.deps.Now().UTC(),
	}
	err = u.deps.Progress.Create(dbc, row)
	switch {
	case err == nil:
		u.deps.Metrics.IncLessonCompletion(observability.CompletionCreated)
		u.deps.Log.Info("lesson completed", "user_id", userID, "lesson_id", lesson.ID, "xp", row.XPEarned)
		return &CompleteLessonOutput{
			Progress:  progressView(row),
			XPAwarded: row.XPEarned,
			Message:   fmt.Sprintf("+%d XP earned! Lesson complete!", row.XPEarned),
		}, nil
	case errors.Is(err, repos.ErrDuplicate):
		existing, gerr := u.deps.Progress.Get(dbc, userID, lesson.ID)
		if gerr != nil {
			return nil, apierr.Internal("load_progress_failed", gerr)
		}
		if existing == nil {
			return nil, apierr.Internal("load_progress_failed", fmt.Errorf("progress row missing after duplicate insert"))
		}
		u.deps.Metrics.IncLessonCompletion(observability.CompletionAlreadyDone)
		return &CompleteLessonOutput{
			Progress:    progressView(existing),
			AlreadyDone: true,
			Message:     "already completed",
		}, nil
	default:
		return nil, apierr.Internal("save_progress_failed", err)
	}
}

// GetLevelProgress aggregates the caller's completions within one level.
func (u Usecases) GetLevelProgress(ctx context.Context, userID string, levelID uuid.UUID) (*LevelProgress, error) {
	ctx, span := tracer.Start(ctx, "learning.GetLevelProgress")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))
	}
	rows, err := u.deps.Progress.ListByUserLevel(dbctx.Context{Ctx: ctx}, userID, levelID)
	if err != nil {
		return nil, apierr.Internal("load_progress_failed", err)
	}
	return &LevelProgress{
		LevelID:            levelID,
		CompletedLessonIDs: lo.Map(rows, func(p *types.UserProgress, _ int) uuid.UUID { return p.LessonID }),
		CompletedCount:     len(rows),
		TotalXP:            lo.SumBy(rows, func(p *types.UserProgress) int { return p.XPEarned }),
	}, nil
}
