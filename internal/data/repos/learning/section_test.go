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

func TestSectionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := db // a failed insert aborts a postgres transaction

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewSectionRepo(db, testutil.Logger(t))

	a1 := testutil.SeedLevel(t, ctx, tx, "A1", 1)
	a2 := testutil.SeedLevel(t, ctx, tx, "A2", 2)

	s2 := &types.Section{LevelID: a1.ID, Name: "Food", DisplayOrder: 2, IsActive: true}
	s1 := &types.Section{LevelID: a1.ID, Name: "Greetings", DisplayOrder: 1, IsActive: true}
	s3 := &types.Section{LevelID: a1.ID, Name: "Travel", DisplayOrder: 3, IsActive: false}
	for _, s := range []*types.Section{s2, s1, s3} {
		if err := repo.Create(dbc, s); err != nil {
			t.Fatalf("Create %s: %v", s.Name, err)
		}
	}
	// same name under another level is fine
	if err := repo.Create(dbc, &types.Section{LevelID: a2.ID, Name: "Greetings", DisplayOrder: 1, IsActive: true}); err != nil {
		t.Fatalf("Create under other level: %v", err)
	}
	if err := repo.Create(dbc, &types.Section{LevelID: a1.ID, Name: "Greetings", DisplayOrder: 9}); !errors.Is(err, dberr.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate within level, got %v", err)
	}

	rows, err := repo.List(dbc, &a1.ID, false)
	if err != nil || len(rows) != 3 {
		t.Fatalf("List: err=%v len=%d", err, len(rows))
	}
	for i, want := range []uuid.UUID{s1.ID, s2.ID, s3.ID} {
		if rows[i].ID != want {
			t.Fatalf("List position %d: got %s want %s", i, rows[i].ID, want)
		}
	}
	if rows, err := repo.List(dbc, &a1.ID, true); err != nil || len(rows) != 2 {
		t.Fatalf("List(active): err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.List(dbc, nil, false); err != nil || len(rows) != 4 {
		t.Fatalf("List(all levels): err=%v len=%d", err, len(rows))
	}

	counts, err := repo.CountByLevelIDs(dbc, []uuid.UUID{a1.ID, a2.ID, uuid.New()})
	if err != nil {
		t.Fatalf("CountByLevelIDs: %v", err)
	}
	if counts[a1.ID] != 3 || counts[a2.ID] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}

	if err := repo.UpdateFields(dbc, s2.ID, map[string]interface{}{"name": "Greetings"}); !errors.Is(err, dberr.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on rename, got %v", err)
	}

	if err := repo.Delete(dbc, s3.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, err := repo.GetByID(dbc, s3.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: err=%v got=%+v", err, got)
	}
	if err := repo.DeleteByLevelID(dbc, a1.ID); err != nil {
		t.Fatalf("DeleteByLevelID: %v", err)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{s1.ID, s2.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("sections should be gone: err=%v len=%d", err, len(rows))
	}
}
