package learning

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

const notAnswered = "Not answered"

type ExamLevelRef struct {
	ID        uuid.UUID `json:"id"`
	LevelName string    `json:"level_name"`
	Title     string    `json:"title"`
}

type ExamCategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ExamQuestionPublic is served while an exam is in progress. It has no
// correct index and no explanation.
type ExamQuestionPublic struct {
	ID        uuid.UUID        `json:"id"`
	ExamTitle string           `json:"exam_title"`
	Level     *ExamLevelRef    `json:"level"`
	Category  *ExamCategoryRef `json:"category"`
	Question  string           `json:"question"`
	Options   []string         `json:"options"`
	TimeLimit int              `json:"time_limit"`
}

type ExamAnswer struct {
	QuestionID    string `json:"question_id"`
	SelectedIndex *int   `json:"selected_index"`
}

// ExamResult is one graded answer. Unknown questions carry only QuestionID
// and IsCorrect=false.
type ExamResult struct {
	QuestionID    string  `json:"question_id"`
	Question      *string `json:"question,omitempty"`
	SelectedIndex *int    `json:"selected_index,omitempty"`
	CorrectIndex  *int    `json:"correct_index,omitempty"`
	CorrectAnswer *string `json:"correct_answer,omitempty"`
	YourAnswer    *string `json:"your_answer,omitempty"`
	IsCorrect     bool    `json:"is_correct"`
	Explanation   *string `json:"explanation,omitempty"`
}

type ExamScore struct {
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
	Results    []ExamResult `json:"results"`
}

// GetExamQuestions returns active questions, optionally scoped by level and
// category (section), without answer keys.
func (u Usecases) GetExamQuestions(ctx context.Context, levelID, categoryID *uuid.UUID) ([]ExamQuestionPublic, error) {
	ctx, span := tracer.Start(ctx, "learning.GetExamQuestions")
	defer span.End()

	dbc := dbctx.Context{Ctx: ctx}
	if levelID != nil {
		if _, err := u.requireLevel(dbc, *levelID); err != nil {
			return nil, err
		}
	}
	if categoryID != nil {
		if _, err := u.requireSection(dbc, *categoryID); err != nil {
			return nil, err
		}
	}
	rows, err := u.deps.Questions.ListActive(dbc, levelID, categoryID)
	if err != nil {
		return nil, apierr.Internal("list_questions_failed", err)
	}
	levels, sections, err := u.questionRefs(dbc, rows)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(q *types.ExamQuestion, _ int) ExamQuestionPublic {
		opts := q.Options.Data()
		if opts == nil {
			opts = []string{}
		}
		return ExamQuestionPublic{
			ID:        q.ID,
			ExamTitle: q.ExamTitle,
			Level:     levels[q.LevelID],
			Category:  sections[q.SectionID],
			Question:  q.Question,
			Options:   opts,
			TimeLimit: q.TimeLimit,
		}
	}), nil
}

// questionRefs batch-loads the level and section references for rows.
func (u Usecases) questionRefs(dbc dbctx.Context, rows []*types.ExamQuestion) (map[uuid.UUID]*ExamLevelRef, map[uuid.UUID]*ExamCategoryRef, error) {
	levelIDs := lo.Uniq(lo.Map(rows, func(q *types.ExamQuestion, _ int) uuid.UUID { return q.LevelID }))
	sectionIDs := lo.Uniq(lo.Map(rows, func(q *types.ExamQuestion, _ int) uuid.UUID { return q.SectionID }))

	levels, err := u.deps.Levels.GetByIDs(dbc, levelIDs)
	if err != nil {
		return nil, nil, apierr.Internal("load_levels_failed", err)
	}
	sections, err := u.deps.Sections.GetByIDs(dbc, sectionIDs)
	if err != nil {
		return nil, nil, apierr.Internal("load_sections_failed", err)
	}
	levelRefs := lo.Associate(levels, func(l *types.Level) (uuid.UUID, *ExamLevelRef) {
		return l.ID, &ExamLevelRef{ID: l.ID, LevelName: l.LevelName, Title: l.Title}
	})
	sectionRefs := lo.Associate(sections, func(s *types.Section) (uuid.UUID, *ExamCategoryRef) {
		return s.ID, &ExamCategoryRef{ID: s.ID, Name: s.Name}
	})
	return levelRefs, sectionRefs, nil
}

// SubmitExam grades answers against the stored keys with a single lookup.
// Repeated answers for one question count once; the first one wins. Total
// is the number of distinct questions that resolved.
func (u Usecases) SubmitExam(ctx context.Context, answers []ExamAnswer) (*ExamScore, error) {
	ctx, span := tracer.Start(ctx, "learning.SubmitExam", trace.WithAttributes(
		attribute.Int("answers", len(answers)),
	))
	defer span.End()

	if answers == nil {
		return nil, apierr.Validation("invalid_answers", "answers are required")
	}

	seen := make(map[string]struct{}, len(answers))
	deduped := make([]ExamAnswer, 0, len(answers))
	for _, a := range answers {
		key := strings.ToLower(strings.TrimSpace(a.QuestionID))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, a)
	}

	ids := lo.FilterMap(deduped, func(a ExamAnswer, _ int) (uuid.UUID, bool) {
		id, err := uuid.Parse(strings.TrimSpace(a.QuestionID))
		return id, err == nil && id != uuid.Nil
	})
	rows, err := u.deps.Questions.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return nil, apierr.Internal("load_questions_failed", err)
	}
	byID := lo.Associate(rows, func(q *types.ExamQuestion) (uuid.UUID, *types.ExamQuestion) { return q.ID, q })

	out := &ExamScore{Results: make([]ExamResult, 0, len(deduped))}
	for _, a := range deduped {
		id, perr := uuid.Parse(strings.TrimSpace(a.QuestionID))
		q, ok := byID[id]
		if perr != nil || !ok {
			out.Results = append(out.Results, ExamResult{QuestionID: a.QuestionID})
			continue
		}
		out.Total++
		res := gradeAnswer(q, a)
		res.QuestionID = a.QuestionID
		if res.IsCorrect {
			out.Score++
		}
		out.Results = append(out.Results, res)
	}
	out.Percentage = percentage(out.Score, out.Total)

	u.deps.Metrics.ObserveExamSubmission(out.Percentage, out.Total)
	span.SetAttributes(attribute.Int("score", out.Score), attribute.Int("total", out.Total))
	return out, nil
}

func gradeAnswer(q *types.ExamQuestion, a ExamAnswer) ExamResult {
	correctText, _ := q.OptionText(q.Correct)
	yours := notAnswered
	if a.SelectedIndex != nil {
		if text, ok := q.OptionText(*a.SelectedIndex); ok {
			yours = text
		}
	}
	return ExamResult{
		Question:      lo.ToPtr(q.Question),
		SelectedIndex: a.SelectedIndex,
		CorrectIndex:  lo.ToPtr(q.Correct),
		CorrectAnswer: lo.ToPtr(correctText),
		YourAnswer:    lo.ToPtr(yours),
		IsCorrect:     a.SelectedIndex != nil && *a.SelectedIndex == q.Correct,
		Explanation:   lo.ToPtr(q.Explanation),
	}
}

// percentage is round(score/total*100), and 0 when nothing resolved.
func percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
