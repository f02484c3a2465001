package learning

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	"github.com/yungbote/levelup-backend/internal/data/repos/testutil"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/cache"
)

type fixture struct {
	uc      Usecases
	db      *gorm.DB
	metrics *observability.Metrics
	cache   cache.Cache
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)
	m := observability.New()
	c := cache.NewMemory()
	uc := newUsecases(t, db, c, m)
	return fixture{uc: uc, db: db, metrics: m, cache: c}
}

// newUsecases builds a Usecases over db; several may share one db to
// stand in for separate API processes.
func newUsecases(t *testing.T, db *gorm.DB, c cache.Cache, m *observability.Metrics) Usecases {
	t.Helper()
	log := testutil.Logger(t)
	return New(UsecasesDeps{
		DB:        db,
		Log:       log,
		Levels:    repos.NewLevelRepo(db, log),
		Sections:  repos.NewSectionRepo(db, log),
		Lessons:   repos.NewLessonRepo(db, log),
		Progress:  repos.NewUserProgressRepo(db, log),
		Questions: repos.NewExamQuestionRepo(db, log),
		Cache:     c,
		CacheTTL:  time.Minute,
		Metrics:   m,
	})
}

func wantStatus(t *testing.T, err error, status int) *apierr.Error {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error with status %d, got %v", status, err)
	}
	if ae.Status != status {
		t.Fatalf("expected status %d, got %d (%s: %v)", status, ae.Status, ae.Code, ae.Err)
	}
	return ae
}

func ptr[T any](v T) *T { return &v }
