package learning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/datatypes"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

const (
	defaultQuestionPageSize = 10
	maxQuestionPageSize     = 100
	statsWindow             = 7 * 24 * time.Hour
)

// QuestionInput carries level and category as raw ids so malformed values
// surface as validation errors.
type QuestionInput struct {
	ExamTitle    *string   `json:"exam_title"`
	Level        *string   `json:"level"`
	Category     *string   `json:"category"`
	Question     *string   `json:"question"`
	Options      *[]string `json:"options"`
	Correct      *int      `json:"correct"`
	Explanation  *string   `json:"explanation"`
	TimeLimit    *int      `json:"time_limit"`
	IsActive     *bool     `json:"is_active"`
	DisplayOrder *int      `json:"display_order"`
}

type QuestionView struct {
	ID           uuid.UUID        `json:"id"`
	ExamTitle    string           `json:"exam_title"`
	Level        *ExamLevelRef    `json:"level"`
	Category     *ExamCategoryRef `json:"category"`
	Question     string           `json:"question"`
	Options      []string         `json:"options"`
	Correct      int              `json:"correct"`
	Explanation  string           `json:"explanation"`
	TimeLimit    int              `json:"time_limit"`
	IsActive     bool             `json:"is_active"`
	DisplayOrder int              `json:"display_order"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type QuestionListQuery struct {
	Page       int
	Limit      int
	Search     string
	LevelID    *uuid.UUID
	CategoryID *uuid.UUID
	IsActive   *bool
}

type LevelQuestionCount struct {
	LevelID   uuid.UUID `json:"level_id"`
	LevelName string    `json:"level_name"`
	Count     int64     `json:"count"`
}

type QuestionStats struct {
	Total    int64                `json:"total"`
	Active   int64                `json:"active"`
	Inactive int64                `json:"inactive"`
	ThisWeek int64                `json:"this_week"`
	ByLevel  []LevelQuestionCount `json:"by_level"`
}

type QuestionPage struct {
	Questions   []QuestionView `json:"questions"`
	Total       int64          `json:"total"`
	TotalPages  int            `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
	Stats       *QuestionStats `json:"stats"`
}

func parseRefID(field string, raw *string) (uuid.UUID, error) {
	s := trimmed(raw)
	if s == "" {
		return uuid.Nil, apierr.Validation("missing_fields", field+" is required")
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.Validation("invalid_"+field, fmt.Sprintf("%s is not a valid id", field))
	}
	return id, nil
}

func validateQuestion(q *types.ExamQuestion) error {
	if strings.TrimSpace(q.ExamTitle) == "" || strings.TrimSpace(q.Question) == "" {
		return apierr.Validation("missing_fields", "exam_title and question are required")
	}
	opts := q.Options.Data()
	if len(opts) < types.MinQuestionOptions || len(opts) > types.MaxQuestionOptions {
		return apierr.Validation("invalid_options", fmt.Sprintf("options must be between %d and %d", types.MinQuestionOptions, types.MaxQuestionOptions))
	}
	if lo.ContainsBy(opts, func(o string) bool { return strings.TrimSpace(o) == "" }) {
		return apierr.Validation("invalid_options", "options cannot be empty")
	}
	if q.Correct < 0 || q.Correct >= len(opts) {
		return apierr.Validation("invalid_correct", "correct answer index is out of range")
	}
	if q.TimeLimit < types.MinTimeLimit || q.TimeLimit > types.MaxTimeLimit {
		return apierr.Validation("invalid_time_limit", fmt.Sprintf("time_limit must be between %d and %d", types.MinTimeLimit, types.MaxTimeLimit))
	}
	if q.DisplayOrder < 0 {
		return apierr.Validation("invalid_display_order", "display_order cannot be negative")
	}
	return nil
}

// checkQuestionScope verifies the level and section exist and that the
// section belongs to the level.
func (u Usecases) checkQuestionScope(dbc dbctx.Context, levelID, sectionID uuid.UUID) error {
	if _, err := u.requireLevel(dbc, levelID); err != nil {
		return err
	}
	section, err := u.requireSection(dbc, sectionID)
	if err != nil {
		return err
	}
	if section.LevelID != levelID {
		return apierr.Validation("category_level_mismatch", "category does not belong to the given level")
	}
	return nil
}

func (u Usecases) CreateQuestion(ctx context.Context, in QuestionInput) (*QuestionView, error) {
	ctx, span := tracer.Start(ctx, "learning.CreateQuestion")
	defer span.End()

	levelID, err := parseRefID("level", in.Level)
	if err != nil {
		return nil, err
	}
	sectionID, err := parseRefID("category", in.Category)
	if err != nil {
		return nil, err
	}
	if in.Options == nil || in.Correct == nil {
		return nil, apierr.Validation("missing_fields", "options and correct are required")
	}

	row := &types.ExamQuestion{
		ExamTitle:    trimmed(in.ExamTitle),
		LevelID:      levelID,
		SectionID:    sectionID,
		Question:     trimmed(in.Question),
		Options:      datatypes.NewJSONType(lo.Map(*in.Options, func(o string, _ int) string { return strings.TrimSpace(o) })),
		Correct:      *in.Correct,
		Explanation:  trimmed(in.Explanation),
		TimeLimit:    lo.FromPtrOr(in.TimeLimit, types.DefaultTimeLimit),
		IsActive:     lo.FromPtrOr(in.IsActive, true),
		DisplayOrder: lo.FromPtrOr(in.DisplayOrder, 0),
	}
	if err := validateQuestion(row); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := u.checkQuestionScope(dbc, levelID, sectionID); err != nil {
		return nil, err
	}
	if err := u.deps.Questions.Create(dbc, row); err != nil {
		return nil, apierr.Internal("create_question_failed", err)
	}
	return u.questionView(dbc, row)
}

// ListQuestions pages through all questions for the admin console. Stats
// ride along so the console can render counters from one call.
func (u Usecases) ListQuestions(ctx context.Context, q QuestionListQuery) (*QuestionPage, error) {
	ctx, span := tracer.Start(ctx, "learning.ListQuestions")
	defer span.End()

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultQuestionPageSize
	}
	if limit > maxQuestionPageSize {
		limit = maxQuestionPageSize
	}

	dbc := dbctx.Context{Ctx: ctx}
	rows, total, err := u.deps.Questions.Page(dbc, repos.ExamQuestionFilter{
		LevelID:   q.LevelID,
		SectionID: q.CategoryID,
		IsActive:  q.IsActive,
		Search:    q.Search,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	})
	if err != nil {
		return nil, apierr.Internal("list_questions_failed", err)
	}
	views, err := u.questionViews(dbc, rows)
	if err != nil {
		return nil, err
	}
	stats, err := u.QuestionStats(ctx)
	if err != nil {
		return nil, err
	}
	return &QuestionPage{
		Questions:   views,
		Total:       total,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		CurrentPage: page,
		Stats:       stats,
	}, nil
}

func (u Usecases) GetQuestion(ctx context.Context, id uuid.UUID) (*QuestionView, error) {
	ctx, span := tracer.Start(ctx, "learning.GetQuestion")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	row, err := u.requireQuestion(dbc, id)
	if err != nil {
		return nil, err
	}
	return u.questionView(dbc, row)
}

// UpdateQuestion merges provided fields onto the stored question and
// validates the result as a whole, so options and correct stay consistent.
func (u Usecases) UpdateQuestion(ctx context.Context, id uuid.UUID, in QuestionInput) (*QuestionView, error) {
	ctx, span := tracer.Start(ctx, "learning.UpdateQuestion")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	row, err := u.requireQuestion(dbc, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	scopeChanged := false
	if in.ExamTitle != nil {
		row.ExamTitle = trimmed(in.ExamTitle)
		updates["exam_title"] = row.ExamTitle
	}
	if in.Level != nil {
		if row.LevelID, err = parseRefID("level", in.Level); err != nil {
			return nil, err
		}
		updates["level_id"] = row.LevelID
		scopeChanged = true
	}
	if in.Category != nil {
		if row.SectionID, err = parseRefID("category", in.Category); err != nil {
			return nil, err
		}
		updates["section_id"] = row.SectionID
		scopeChanged = true
	}
	if in.Question != nil {
		row.Question = trimmed(in.Question)
		updates["question"] = row.Question
	}
	if in.Options != nil {
		row.Options = datatypes.NewJSONType(lo.Map(*in.Options, func(o string, _ int) string { return strings.TrimSpace(o) }))
		updates["options"] = row.Options
	}
	if in.Correct != nil {
		row.Correct = *in.Correct
		updates["correct"] = row.Correct
	}
	if in.Explanation != nil {
		row.Explanation = trimmed(in.Explanation)
		updates["explanation"] = row.Explanation
	}
	if in.TimeLimit != nil {
		row.TimeLimit = *in.TimeLimit
		updates["time_limit"] = row.TimeLimit
	}
	if in.IsActive != nil {
		row.IsActive = *in.IsActive
		updates["is_active"] = row.IsActive
	}
	if in.DisplayOrder != nil {
		row.DisplayOrder = *in.DisplayOrder
		updates["display_order"] = row.DisplayOrder
	}

	if err := validateQuestion(row); err != nil {
		return nil, err
	}
	if scopeChanged {
		if err := u.checkQuestionScope(dbc, row.LevelID, row.SectionID); err != nil {
			return nil, err
		}
	}
	if err := u.deps.Questions.UpdateFields(dbc, id, updates); err != nil {
		return nil, apierr.Internal("update_question_failed", err)
	}
	return u.GetQuestion(ctx, id)
}

func (u Usecases) ToggleQuestion(ctx context.Context, id uuid.UUID) (*QuestionView, error) {
	ctx, span := tracer.Start(ctx, "learning.ToggleQuestion")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	row, err := u.requireQuestion(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := u.deps.Questions.UpdateFields(dbc, id, map[string]interface{}{"is_active": !row.IsActive}); err != nil {
		return nil, apierr.Internal("toggle_question_failed", err)
	}
	return u.GetQuestion(ctx, id)
}

func (u Usecases) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "learning.DeleteQuestion")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	if _, err := u.requireQuestion(dbc, id); err != nil {
		return err
	}
	if err := u.deps.Questions.Delete(dbc, id); err != nil {
		return apierr.Internal("delete_question_failed", err)
	}
	return nil
}

// QuestionStats counts questions overall, by status, created in the last
// seven days, and per level (sorted by level name).
func (u Usecases) QuestionStats(ctx context.Context) (*QuestionStats, error) {
	ctx, span := tracer.Start(ctx, "learning.QuestionStats")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	raw, err := u.deps.Questions.Stats(dbc, u.deps.Now().Add(-statsWindow))
	if err != nil {
		return nil, apierr.Internal("question_stats_failed", err)
	}
	levels, err := u.deps.Levels.GetByIDs(dbc, lo.Map(raw.ByLevel, func(c repos.ExamQuestionLevelCount, _ int) uuid.UUID { return c.LevelID }))
	if err != nil {
		return nil, apierr.Internal("load_levels_failed", err)
	}
	names := lo.Associate(levels, func(l *types.Level) (uuid.UUID, string) { return l.ID, l.LevelName })

	byLevel := lo.Map(raw.ByLevel, func(c repos.ExamQuestionLevelCount, _ int) LevelQuestionCount {
		return LevelQuestionCount{LevelID: c.LevelID, LevelName: names[c.LevelID], Count: c.Count}
	})
	sort.SliceStable(byLevel, func(i, j int) bool { return byLevel[i].LevelName < byLevel[j].LevelName })

	return &QuestionStats{
		Total:    raw.Total,
		Active:   raw.Active,
		Inactive: raw.Total - raw.Active,
		ThisWeek: raw.CreatedSince,
		ByLevel:  byLevel,
	}, nil
}

func (u Usecases) requireQuestion(dbc dbctx.Context, id uuid.UUID) (*types.ExamQuestion, error) {
	row, err := u.deps.Questions.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("load_question_failed", err)
	}
	if row == nil {
		return nil, apierr.NotFound("question_not_found", "question not found")
	}
	return row, nil
}

func (u Usecases) questionView(dbc dbctx.Context, row *types.ExamQuestion) (*QuestionView, error) {
	views, err := u.questionViews(dbc, []*types.ExamQuestion{row})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (u Usecases) questionViews(dbc dbctx.Context, rows []*types.ExamQuestion) ([]QuestionView, error) {
	levels, sections, err := u.questionRefs(dbc, rows)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(q *types.ExamQuestion, _ int) QuestionView {
		opts := q.Options.Data()
		if opts == nil {
			opts = []string{}
		}
		return QuestionView{
			ID:           q.ID,
			ExamTitle:    q.ExamTitle,
			Level:        levels[q.LevelID],
			Category:     sections[q.SectionID],
			Question:     q.Question,
			Options:      opts,
			Correct:      q.Correct,
			Explanation:  q.Explanation,
			TimeLimit:    q.TimeLimit,
			IsActive:     q.IsActive,
			DisplayOrder: q.DisplayOrder,
			CreatedAt:    q.CreatedAt,
			UpdatedAt:    q.UpdatedAt,
		}
	}), nil
}
