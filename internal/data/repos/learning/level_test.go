package learning

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/levelup-backend/internal/data/dberr"
	"github.com/yungbote/levelup-backend/internal/data/repos/testutil"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

func TestLevelRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLevelRepo(db, testutil.Logger(t))

	a2 := &types.Level{LevelName: "A2", Title: "Elementary", Description: "d", DisplayOrder: 2, IsActive: true}
	a1 := &types.Level{LevelName: "A1", Title: "Beginner", Description: "d", DisplayOrder: 1, IsActive: true}
	b1 := &types.Level{LevelName: "B1", Title: "Intermediate", Description: "d", DisplayOrder: 3, IsActive: false}
	for _, l := range []*types.Level{a2, a1, b1} {
		if err := repo.Create(dbc, l); err != nil {
			t.Fatalf("Create %s: %v", l.LevelName, err)
		}
		if l.ID == uuid.Nil {
			t.Fatalf("Create should assign an id")
		}
	}

	if err := repo.Create(dbc, &types.Level{LevelName: "A1", Title: "dup", Description: "d"}); !errors.Is(err, dberr.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated level_name, got %v", err)
	}
}

func TestLevelRepo_ListGetUpdateDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := db // a failed insert aborts a postgres transaction

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLevelRepo(db, testutil.Logger(t))

	a2 := testutil.SeedLevel(t, ctx, tx, "A2", 2)
	a1 := testutil.SeedLevel(t, ctx, tx, "A1", 1)
	if err := repo.UpdateFields(dbc, a2.ID, map[string]interface{}{"is_active": false}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	all, err := repo.List(dbc, false)
	if err != nil || len(all) != 2 {
		t.Fatalf("List(all): err=%v len=%d", err, len(all))
	}
	if all[0].ID != a1.ID || all[1].ID != a2.ID {
		t.Fatalf("List should order by display_order")
	}
	active, err := repo.List(dbc, true)
	if err != nil || len(active) != 1 || active[0].ID != a1.ID {
		t.Fatalf("List(active): err=%v len=%d", err, len(active))
	}

	got, err := repo.GetByID(dbc, a1.ID)
	if err != nil || got == nil || got.LevelName != "A1" {
		t.Fatalf("GetByID: err=%v got=%+v", err, got)
	}
	if len(got.Outcomes()) != 1 {
		t.Fatalf("expected outcomes to round trip, got %v", got.Outcomes())
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{a1.ID, a2.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	if err := repo.UpdateFields(dbc, a2.ID, map[string]interface{}{"level_name": "A1"}); !errors.Is(err, dberr.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on rename collision, got %v", err)
	}

	if err := repo.Delete(dbc, a1.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, err := repo.GetByID(dbc, a1.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: err=%v got=%+v", err, got)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID(missing) should be nil,nil: err=%v got=%+v", err, got)
	}
}
