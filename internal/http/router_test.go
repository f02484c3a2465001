package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	"github.com/yungbote/levelup-backend/internal/data/repos/testutil"
	types "github.com/yungbote/levelup-backend/internal/domain"
	httpH "github.com/yungbote/levelup-backend/internal/http/handlers"
	httpMW "github.com/yungbote/levelup-backend/internal/http/middleware"
	"github.com/yungbote/levelup-backend/internal/modules/learning"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/cache"
	"github.com/yungbote/levelup-backend/internal/platform/identity"
)

const testSecret = "router-test-secret"

type harness struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	c := cache.NewMemory()
	m := observability.New()
	uc := learning.New(learning.UsecasesDeps{
		DB:        db,
		Log:       log,
		Levels:    repos.NewLevelRepo(db, log),
		Sections:  repos.NewSectionRepo(db, log),
		Lessons:   repos.NewLessonRepo(db, log),
		Progress:  repos.NewUserProgressRepo(db, log),
		Questions: repos.NewExamQuestionRepo(db, log),
		Cache:     c,
		Metrics:   m,
	})
	verifier, err := identity.NewHS256Verifier(testSecret)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	engine := NewRouter(RouterConfig{
		Log:                  log,
		Metrics:              m,
		AuthMiddleware:       httpMW.NewAuthMiddleware(log, verifier),
		HealthHandler:        httpH.NewHealthHandler(log, db, c),
		CatalogHandler:       httpH.NewCatalogHandler(log, uc),
		ProgressHandler:      httpH.NewProgressHandler(log, uc),
		ExamHandler:          httpH.NewExamHandler(log, uc),
		AdminCatalogHandler:  httpH.NewAdminCatalogHandler(log, uc),
		AdminQuestionHandler: httpH.NewAdminQuestionHandler(log, uc),
	})
	return &harness{t: t, engine: engine, db: db}
}

func (h *harness) token(sub, role string) string {
	h.t.Helper()
	tok, err := identity.Sign(testSecret, sub, role, time.Hour)
	if err != nil {
		h.t.Fatalf("sign: %v", err)
	}
	return tok
}

func (h *harness) do(method, path, bearer string, body any) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			h.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func errCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (h *harness) seedCourse() (*types.Level, *types.Lesson, *types.Lesson) {
	ctx := context.Background()
	lvl := testutil.SeedLevel(h.t, ctx, h.db, "A1", 1)
	sec := testutil.SeedSection(h.t, ctx, h.db, lvl.ID, "Greetings", 1)
	one := testutil.SeedLesson(h.t, ctx, h.db, sec, "Bonjour", 1)
	two := testutil.SeedLesson(h.t, ctx, h.db, sec, "Salut", 2)
	return lvl, one, two
}

func TestHealthcheck(t *testing.T) {
	h := newHarness(t)
	rec, body := h.do(http.MethodGet, "/healthcheck", "", nil)
	if rec.Code != http.StatusOK || body["database"] != "ok" {
		t.Fatalf("unexpected health %d %v", rec.Code, body)
	}
}

func TestPublicCatalogAndGate(t *testing.T) {
	h := newHarness(t)
	lvl, one, two := h.seedCourse()

	rec, body := h.do(http.MethodGet, "/api/v1/levels", "", nil)
	if rec.Code != http.StatusOK || len(body["levels"].([]any)) != 1 {
		t.Fatalf("levels: %d %v", rec.Code, body)
	}

	rec, body = h.do(http.MethodGet, "/api/v1/levels/"+lvl.ID.String()+"/sections", "", nil)
	if rec.Code != http.StatusOK || len(body["sections"].([]any)) != 1 {
		t.Fatalf("sections: %d %v", rec.Code, body)
	}

	rec, body = h.do(http.MethodGet, "/api/v1/levels/nope/sections", "", nil)
	if rec.Code != http.StatusBadRequest || errCode(body) != "invalid_level_id" {
		t.Fatalf("malformed id: %d %v", rec.Code, body)
	}

	rec, _ = h.do(http.MethodGet, "/api/v1/lessons/"+one.ID.String(), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first lesson: %d", rec.Code)
	}
	rec, body = h.do(http.MethodGet, "/api/v1/lessons/"+two.ID.String(), "", nil)
	if rec.Code != http.StatusForbidden || errCode(body) != "lesson_locked" {
		t.Fatalf("locked lesson: %d %v", rec.Code, body)
	}
}

func TestCompleteLessonFlow(t *testing.T) {
	h := newHarness(t)
	lvl, one, two := h.seedCourse()
	learner := h.token("learner-1", "")

	rec, _ := h.do(http.MethodPost, "/api/v1/lessons/"+one.ID.String()+"/complete", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous completion: %d", rec.Code)
	}

	rec, _ = h.do(http.MethodPost, "/api/v1/lessons/"+two.ID.String()+"/complete", learner, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("out of order completion: %d", rec.Code)
	}

	rec, body := h.do(http.MethodPost, "/api/v1/lessons/"+one.ID.String()+"/complete", learner, nil)
	if rec.Code != http.StatusCreated || body["xp_awarded"] != float64(50) {
		t.Fatalf("first completion: %d %v", rec.Code, body)
	}
	rec, body = h.do(http.MethodPost, "/api/v1/lessons/"+one.ID.String()+"/complete", learner, nil)
	if rec.Code != http.StatusOK || body["already_done"] != true {
		t.Fatalf("repeat completion: %d %v", rec.Code, body)
	}

	rec, _ = h.do(http.MethodGet, "/api/v1/lessons/"+two.ID.String(), learner, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unlocked lesson view: %d", rec.Code)
	}

	rec, body = h.do(http.MethodGet, "/api/v1/levels/"+lvl.ID.String()+"/progress", learner, nil)
	prog, _ := body["progress"].(map[string]any)
	if rec.Code != http.StatusOK || prog["total_xp"] != float64(50) || prog["completed_count"] != float64(1) {
		t.Fatalf("progress: %d %v", rec.Code, body)
	}
}

func TestExamEndpoints(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	lvl := testutil.SeedLevel(t, ctx, h.db, "A1", 1)
	sec := testutil.SeedSection(t, ctx, h.db, lvl.ID, "Greetings", 1)
	q := testutil.SeedExamQuestion(t, ctx, h.db, sec, "Hello?", []string{"Bonjour", "Merci"}, 0, 1)

	rec, _ := h.do(http.MethodGet, "/api/v1/questions/exam?level="+lvl.ID.String(), "", nil)
	if rec.Code != http.StatusOK || bytes.Contains(rec.Body.Bytes(), []byte(`"correct`)) || bytes.Contains(rec.Body.Bytes(), []byte(`"explanation"`)) {
		t.Fatalf("exam questions: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = h.do(http.MethodGet, "/api/v1/questions/exam?level=bad", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed level filter: %d", rec.Code)
	}

	rec, body := h.do(http.MethodPost, "/api/v1/questions/submit", "", map[string]any{
		"answers": []map[string]any{{"question_id": q.ID.String(), "selected_index": 0}},
	})
	if rec.Code != http.StatusOK || body["percentage"] != float64(100) {
		t.Fatalf("submit: %d %v", rec.Code, body)
	}

	rec, body = h.do(http.MethodPost, "/api/v1/questions/submit", "", `{"answers":"nope"}`)
	if rec.Code != http.StatusBadRequest || errCode(body) != "invalid_answers" {
		t.Fatalf("non-array answers: %d %v", rec.Code, body)
	}
}

func TestAdminRoutesRequireRole(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do(http.MethodGet, "/api/v1/admin/levels", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous admin: %d", rec.Code)
	}
	rec, _ = h.do(http.MethodGet, "/api/v1/admin/levels", h.token("learner-1", ""), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("learner admin: %d", rec.Code)
	}
}

func TestAdminCatalogLifecycle(t *testing.T) {
	h := newHarness(t)
	admin := h.token("root", "admin")

	rec, body := h.do(http.MethodPost, "/api/v1/admin/levels", admin, map[string]any{
		"level_name": "B1", "title": "Intermediate", "description": "d", "level_outcome": "o",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create level: %d %v", rec.Code, body)
	}
	levelID := body["level"].(map[string]any)["id"].(string)

	rec, body = h.do(http.MethodPost, "/api/v1/admin/levels", admin, map[string]any{
		"level_name": " B1 ", "title": "dup", "description": "d", "level_outcome": "o",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate level: %d %v", rec.Code, body)
	}

	rec, body = h.do(http.MethodPost, "/api/v1/admin/levels/"+levelID+"/sections", admin, map[string]any{"name": "Work"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create section: %d %v", rec.Code, body)
	}
	sectionID := body["section"].(map[string]any)["id"].(string)

	blocks := `[{"type":"video","block_order":1,"video":{"video_url":"https://v"}}]`
	rec, body = h.do(http.MethodPost, "/api/v1/admin/sections/"+sectionID+"/lessons", admin, map[string]any{
		"title": "Meetings", "description": "d", "lesson_type": "video", "content_blocks": blocks,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create lesson with string blocks: %d %v", rec.Code, body)
	}
	lesson := body["lesson"].(map[string]any)
	if lesson["xp_points"] != float64(50) || len(lesson["content_blocks"].([]any)) != 1 {
		t.Fatalf("unexpected lesson %v", lesson)
	}

	rec, body = h.do(http.MethodPost, "/api/v1/admin/sections/"+sectionID+"/lessons", admin, map[string]any{
		"title": "Bad", "description": "d", "lesson_type": "video", "content_blocks": map[string]any{"type": "video"},
	})
	if rec.Code != http.StatusBadRequest || errCode(body) != "invalid_content_blocks" {
		t.Fatalf("object blocks: %d %v", rec.Code, body)
	}

	rec, body = h.do(http.MethodPost, "/api/v1/admin/questions", admin, map[string]any{
		"exam_title": "B1", "level": levelID, "category": sectionID, "question": "Q?",
		"options": []string{"a", "b", "c"}, "correct": 5,
	})
	if rec.Code != http.StatusBadRequest || errCode(body) != "invalid_correct" {
		t.Fatalf("out of range correct: %d %v", rec.Code, body)
	}

	rec, body = h.do(http.MethodGet, "/api/v1/admin/questions/stats", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: %d %v", rec.Code, body)
	}

	rec, _ = h.do(http.MethodDelete, "/api/v1/admin/levels/"+levelID, admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete level: %d", rec.Code)
	}
	rec, _ = h.do(http.MethodGet, "/api/v1/admin/sections/"+sectionID, admin, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("section should be gone: %d", rec.Code)
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	h := newHarness(t)
	rec, body := h.do(http.MethodGet, "/api/v1/nope", "", nil)
	if rec.Code != http.StatusNotFound || errCode(body) != "route_not_found" {
		t.Fatalf("unexpected %d %v", rec.Code, body)
	}
}
