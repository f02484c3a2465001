package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.IncLessonCompletion(CompletionCreated)
	m.ObserveExamSubmission(50, 2)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
	if m.LessonCompletions(CompletionCreated) != 0 {
		t.Fatalf("nil metrics should read zero")
	}
}

func TestMetrics_Exposition(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/v1/levels", "200", 20*time.Millisecond)
	m.IncLessonCompletion(CompletionCreated)
	m.IncLessonCompletion(CompletionAlreadyDone)
	m.IncLessonCompletion(CompletionAlreadyDone)
	m.ObserveExamSubmission(50, 2)
	m.ObserveExamSubmission(0, 0)

	if got := m.LessonCompletions(CompletionAlreadyDone); got != 2 {
		t.Fatalf("expected 2 already_done, got %v", got)
	}
	if got := m.ExamSubmissions("empty"); got != 1 {
		t.Fatalf("expected 1 empty submission, got %v", got)
	}
	if got := m.examScore.Count(); got != 1 {
		t.Fatalf("empty submissions must not be scored, got %d observations", got)
	}

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`lu_api_requests_total{method="GET",route="/api/v1/levels",status="200"} 1`,
		`lu_lesson_completions_total{outcome="already_done"} 2`,
		`lu_exam_score_percent_bucket{le="50"} 1`,
		`lu_exam_score_percent_bucket{le="+Inf"} 1`,
		"# TYPE lu_api_inflight_requests gauge",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("exposition missing %q:\n%s", want, body)
		}
	}
}

func TestMetrics_HandlerRoutesOnlyMetrics(t *testing.T) {
	h := New().Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), "# TYPE lu_api_requests_total counter") {
		t.Fatalf("GET /metrics: %d %s", rec.Code, rec.Body.String())
	}

	for _, tc := range []struct{ method, path string }{
		{"GET", "/"},
		{"GET", "/healthcheck"},
		{"POST", "/metrics"},
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code == 200 {
			t.Fatalf("%s %s should not serve metrics", tc.method, tc.path)
		}
	}
}

func TestLabelString(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("unexpected labels %s", got)
	}
	if withLe("", "1") != `{le="1"}` {
		t.Fatalf("unexpected le on empty labels")
	}
}
