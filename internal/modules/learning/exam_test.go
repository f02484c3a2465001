package learning

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/levelup-backend/internal/data/repos/testutil"
)

func TestGetExamQuestions_HidesAnswerKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lvl := testutil.SeedLevel(t, ctx, f.db, "A1", 1)
	sec := testutil.SeedSection(t, ctx, f.db, lvl.ID, "Greetings", 1)
	other := testutil.SeedSection(t, ctx, f.db, lvl.ID, "Food", 2)
	testutil.SeedExamQuestion(t, ctx, f.db, sec, "Hello?", []string{"Bonjour", "Merci"}, 0, 1)
	testutil.SeedExamQuestion(t, ctx, f.db, other, "Bread?", []string{"Pain", "Eau"}, 0, 2)
	off := testutil.SeedExamQuestion(t, ctx, f.db, sec, "Hidden?", []string{"a", "b"}, 1, 3)
	if err := f.db.Model(off).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	all, err := f.uc.GetExamQuestions(ctx, nil, nil)
	if err != nil {
		t.Fatalf("GetExamQuestions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two active questions, got %d", len(all))
	}
	if all[0].Level == nil || all[0].Level.LevelName != "A1" || all[0].Category == nil || all[0].Category.Name != "Greetings" {
		t.Fatalf("questions should carry level and category refs, got %+v", all[0])
	}
	raw, _ := json.Marshal(all)
	if strings.Contains(string(raw), "correct") || strings.Contains(string(raw), "explanation") {
		t.Fatalf("public questions must not leak the answer key: %s", raw)
	}

	scoped, err := f.uc.GetExamQuestions(ctx, &lvl.ID, &other.ID)
	if err != nil {
		t.Fatalf("GetExamQuestions scoped: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Question != "Bread?" {
		t.Fatalf("unexpected scoped questions %+v", scoped)
	}

	missing := uuid.New()
	_, err = f.uc.GetExamQuestions(ctx, &missing, nil)
	wantStatus(t, err, http.StatusNotFound)
}

func TestSubmitExam_Scores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lvl := testutil.SeedLevel(t, ctx, f.db, "A1", 1)
	sec := testutil.SeedSection(t, ctx, f.db, lvl.ID, "Greetings", 1)
	q1 := testutil.SeedExamQuestion(t, ctx, f.db, sec, "Hello?", []string{"Bonjour", "Merci"}, 0, 1)
	q2 := testutil.SeedExamQuestion(t, ctx, f.db, sec, "Thanks?", []string{"Bonjour", "Merci", "Salut"}, 1, 2)

	score, err := f.uc.SubmitExam(ctx, []ExamAnswer{
		{QuestionID: q1.ID.String(), SelectedIndex: ptr(0)},
		{QuestionID: q2.ID.String(), SelectedIndex: ptr(2)},
	})
	if err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}
	if score.Score != 1 || score.Total != 2 || score.Percentage != 50 {
		t.Fatalf("unexpected score %+v", score)
	}
	wrong := score.Results[1]
	if wrong.IsCorrect || *wrong.YourAnswer != "Salut" || *wrong.CorrectAnswer != "Merci" || *wrong.CorrectIndex != 1 || *wrong.Explanation != "because" {
		t.Fatalf("unexpected graded answer %+v", wrong)
	}
	if f.metrics.ExamSubmissions("scored") != 1 {
		t.Fatalf("submission should be counted")
	}
}

func TestSubmitExam_EmptyAndMissingAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.SubmitExam(ctx, nil)
	wantStatus(t, err, http.StatusBadRequest)

	empty, err := f.uc.SubmitExam(ctx, []ExamAnswer{})
	if err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}
	if empty.Total != 0 || empty.Percentage != 0 || empty.Results == nil {
		t.Fatalf("empty submission should score zero, got %+v", empty)
	}
	if f.metrics.ExamSubmissions("empty") != 1 {
		t.Fatalf("empty submission should be counted")
	}

	lvl := testutil.SeedLevel(t, ctx, f.db, "A1", 1)
	sec := testutil.SeedSection(t, ctx, f.db, lvl.ID, "Greetings", 1)
	q := testutil.SeedExamQuestion(t, ctx, f.db, sec, "Hello?", []string{"Bonjour", "Merci"}, 0, 1)

	for _, sel := range []*int{nil, ptr(7), ptr(-1)} {
		got, err := f.uc.SubmitExam(ctx, []ExamAnswer{{QuestionID: q.ID.String(), SelectedIndex: sel}})
		if err != nil {
			t.Fatalf("SubmitExam: %v", err)
		}
		r := got.Results[0]
		if r.IsCorrect || *r.YourAnswer != "Not answered" || got.Total != 1 {
			t.Fatalf("selection %v should be reported as not answered, got %+v", sel, r)
		}
	}
}

func TestSubmitExam_UnknownAndDuplicateIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lvl := testutil.SeedLevel(t, ctx, f.db, "A1", 1)
	sec := testutil.SeedSection(t, ctx, f.db, lvl.ID, "Greetings", 1)
	q := testutil.SeedExamQuestion(t, ctx, f.db, sec, "Hello?", []string{"Bonjour", "Merci"}, 0, 1)

	score, err := f.uc.SubmitExam(ctx, []ExamAnswer{
		{QuestionID: q.ID.String(), SelectedIndex: ptr(0)},
		{QuestionID: strings.ToUpper(q.ID.String()), SelectedIndex: ptr(1)},
		{QuestionID: uuid.NewString(), SelectedIndex: ptr(0)},
		{QuestionID: "not-a-uuid", SelectedIndex: ptr(0)},
	})
	if err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}
	if score.Total != 1 || score.Score != 1 || score.Percentage != 100 {
		t.Fatalf("duplicates should count once and the first should win, got %+v", score)
	}
	if len(score.Results) != 3 {
		t.Fatalf("expected one result per distinct id, got %+v", score.Results)
	}
	for _, r := range score.Results[1:] {
		if r.IsCorrect || r.Question != nil || r.CorrectIndex != nil {
			t.Fatalf("unknown ids should only echo the id, got %+v", r)
		}
	}
	raw, _ := json.Marshal(score.Results[2])
	if string(raw) != `{"question_id":"not-a-uuid","is_correct":false}` {
		t.Fatalf("unexpected unknown result shape %s", raw)
	}
}

func TestCreateQuestion_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lvl := testutil.SeedLevel(t, ctx, f.db, "A1", 1)
	other := testutil.SeedLevel(t, ctx, f.db, "A2", 2)
	sec := testutil.SeedSection(t, ctx, f.db, lvl.ID, "Greetings", 1)
	foreign := testutil.SeedSection(t, ctx, f.db, other.ID, "Travel", 1)

	base := func() QuestionInput {
		return QuestionInput{
			ExamTitle: ptr("Placement"),
			Level:     ptr(lvl.ID.String()),
			Category:  ptr(sec.ID.String()),
			Question:  ptr("Hello?"),
			Options:   ptr([]string{"Bonjour", "Merci", "Salut"}),
			Correct:   ptr(0),
		}
	}

	q, err := f.uc.CreateQuestion(ctx, base())
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if q.TimeLimit != 15 || !q.IsActive || q.DisplayOrder != 0 || q.Level.LevelName != "A1" {
		t.Fatalf("unexpected defaults %+v", q)
	}

	cases := []struct {
		name   string
		mutate func(*QuestionInput)
		status int
	}{
		{"correct out of range", func(in *QuestionInput) { in.Correct = ptr(5) }, http.StatusBadRequest},
		{"one option", func(in *QuestionInput) { in.Options = ptr([]string{"a"}) }, http.StatusBadRequest},
		{"seven options", func(in *QuestionInput) { in.Options = ptr([]string{"a", "b", "c", "d", "e", "f", "g"}) }, http.StatusBadRequest},
		{"blank option", func(in *QuestionInput) { in.Options = ptr([]string{"a", "  "}) }, http.StatusBadRequest},
		{"time limit zero", func(in *QuestionInput) { in.TimeLimit = ptr(0) }, http.StatusBadRequest},
		{"time limit too long", func(in *QuestionInput) { in.TimeLimit = ptr(121) }, http.StatusBadRequest},
		{"negative order", func(in *QuestionInput) { in.DisplayOrder = ptr(-1) }, http.StatusBadRequest},
		{"malformed level", func(in *QuestionInput) { in.Level = ptr("nope") }, http.StatusBadRequest},
		{"missing category", func(in *QuestionInput) { in.Category = nil }, http.StatusBadRequest},
		{"category from another level", func(in *QuestionInput) { in.Category = ptr(foreign.ID.String()) }, http.StatusBadRequest},
		{"unknown level", func(in *QuestionInput) { in.Level = ptr(uuid.NewString()) }, http.StatusNotFound},
		{"unknown category", func(in *QuestionInput) { in.Category = ptr(uuid.NewString()) }, http.StatusNotFound},
	}
	for _, tc := range cases {
		in := base()
		tc.mutate(&in)
		_, err := f.uc.CreateQuestion(ctx, in)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		wantStatus(t, err, tc.status)
	}

	edge := base()
	edge.TimeLimit = ptr(120)
	if _, err := f.uc.CreateQuestion(ctx, edge); err != nil {
		t.Fatalf("time limit 120 should be accepted: %v", err)
	}
}

func TestUpdateQuestion_MergesThenValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lvl := testutil.SeedLevel(t, ctx, f.db, "A1", 1)
	sec := testutil.SeedSection(t, ctx, f.db, lvl.ID, "Greetings", 1)
	q := testutil.SeedExamQuestion(t, ctx, f.db, sec, "Hello?", []string{"a", "b", "c"}, 2, 1)

	// Shrinking options below the stored correct index is rejected.
	_, err := f.uc.UpdateQuestion(ctx, q.ID, QuestionInput{Options: ptr([]string{"a", "b"})})
	wantStatus(t, err, http.StatusBadRequest)

	got, err := f.uc.UpdateQuestion(ctx, q.ID, QuestionInput{Options: ptr([]string{"a", "b"}), Correct: ptr(1)})
	if err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	if len(got.Options) != 2 || got.Correct != 1 || got.Question != "Hello?" {
		t.Fatalf("unexpected merged question %+v", got)
	}

	toggled, err := f.uc.ToggleQuestion(ctx, q.ID)
	if err != nil || toggled.IsActive {
		t.Fatalf("toggle should deactivate, got %+v err=%v", toggled, err)
	}

	_, err = f.uc.UpdateQuestion(ctx, uuid.New(), QuestionInput{Question: ptr("x")})
	wantStatus(t, err, http.StatusNotFound)

	if err := f.uc.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	_, err = f.uc.GetQuestion(ctx, q.ID)
	wantStatus(t, err, http.StatusNotFound)
}

func TestListQuestions_PagingAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b1 := testutil.SeedLevel(t, ctx, f.db, "B1", 2)
	a1 := testutil.SeedLevel(t, ctx, f.db, "A1", 1)
	bsec := testutil.SeedSection(t, ctx, f.db, b1.ID, "Work", 1)
	asec := testutil.SeedSection(t, ctx, f.db, a1.ID, "Greetings", 1)
	for i := 0; i < 12; i++ {
		testutil.SeedExamQuestion(t, ctx, f.db, asec, "q", []string{"a", "b"}, 0, i)
	}
	old := testutil.SeedExamQuestion(t, ctx, f.db, bsec, "old", []string{"a", "b"}, 0, 1)
	stale := time.Now().Add(-30 * 24 * time.Hour)
	if err := f.db.Model(old).UpdateColumns(map[string]interface{}{"created_at": stale, "is_active": false}).Error; err != nil {
		t.Fatalf("age question: %v", err)
	}

	page, err := f.uc.ListQuestions(ctx, QuestionListQuery{Page: 2})
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if page.Total != 13 || page.TotalPages != 2 || page.CurrentPage != 2 || len(page.Questions) != 3 {
		t.Fatalf("unexpected page %+v", page)
	}

	capped, err := f.uc.ListQuestions(ctx, QuestionListQuery{Limit: 1000})
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(capped.Questions) != 13 || capped.TotalPages != 1 {
		t.Fatalf("limit should be capped but still return everything here, got %d", len(capped.Questions))
	}

	s := page.Stats
	if s == nil || s.Total != 13 || s.Active != 12 || s.Inactive != 1 || s.ThisWeek != 12 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if len(s.ByLevel) != 2 || s.ByLevel[0].LevelName != "A1" || s.ByLevel[0].Count != 12 || s.ByLevel[1].LevelName != "B1" {
		t.Fatalf("by_level should be named and sorted, got %+v", s.ByLevel)
	}

	inactive := false
	filtered, err := f.uc.ListQuestions(ctx, QuestionListQuery{IsActive: &inactive})
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if filtered.Total != 1 || filtered.Questions[0].Question != "old" {
		t.Fatalf("unexpected filtered page %+v", filtered)
	}
}
