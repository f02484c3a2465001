package learning

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/levelup-backend/internal/data/repos/testutil"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/cache"
)

// hookCache runs beforeSet once, ahead of the first Set it sees.
type hookCache struct {
	cache.Cache
	once      sync.Once
	beforeSet func()
}

func (h *hookCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	h.once.Do(h.beforeSet)
	return h.Cache.Set(ctx, key, v, ttl)
}

func TestListSections_WriteRacingDeleteIsNotServed(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	lvl := testutil.SeedLevel(t, ctx, db, "A1", 1)
	testutil.SeedSection(t, ctx, db, lvl.ID, "Greetings", 1)

	hc := &hookCache{Cache: cache.NewMemory()}
	uc := newUsecases(t, db, hc, observability.New())
	// The delete commits and invalidates after the read loaded its rows but
	// before it stores them.
	hc.beforeSet = func() {
		if err := uc.DeleteLevel(ctx, lvl.ID); err != nil {
			t.Errorf("DeleteLevel: %v", err)
		}
	}

	stale, err := uc.ListSections(ctx, lvl.ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("in-flight read should return what it loaded, got %+v", stale)
	}

	_, err = uc.ListSections(ctx, lvl.ID)
	wantStatus(t, err, http.StatusNotFound)
}

func TestListSections_SharedCacheSeesOtherInstanceWrites(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	shared := cache.NewMemory()
	a := newUsecases(t, db, shared, nil)
	b := newUsecases(t, db, shared, nil)

	keep := testutil.SeedLevel(t, ctx, db, "A1", 1)
	gone := testutil.SeedLevel(t, ctx, db, "A2", 2)
	testutil.SeedSection(t, ctx, db, keep.ID, "Greetings", 1)
	testutil.SeedSection(t, ctx, db, gone.ID, "Routine", 1)

	if _, err := b.ListSections(ctx, gone.ID); err != nil {
		t.Fatalf("warm b: %v", err)
	}
	if _, err := b.ListSections(ctx, keep.ID); err != nil {
		t.Fatalf("warm b: %v", err)
	}

	if err := a.DeleteLevel(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteLevel: %v", err)
	}
	_, err := b.ListSections(ctx, gone.ID)
	wantStatus(t, err, http.StatusNotFound)

	if _, err := a.ToggleLevel(ctx, keep.ID); err != nil {
		t.Fatalf("ToggleLevel: %v", err)
	}
	_, err = b.ListSections(ctx, keep.ID)
	wantStatus(t, err, http.StatusNotFound)

	levels, err := b.ListLevels(ctx)
	if err != nil {
		t.Fatalf("ListLevels: %v", err)
	}
	if len(levels) != 0 {
		t.Fatalf("deleted and inactive levels should not be listed, got %+v", levels)
	}
}
