package seed

import (
	"context"
	"testing"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	"github.com/yungbote/levelup-backend/internal/data/repos/testutil"
	"github.com/yungbote/levelup-backend/internal/modules/learning"
)

func newSeeder(t *testing.T) (*Seeder, learning.Usecases) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	uc := learning.New(learning.UsecasesDeps{
		DB:        db,
		Log:       log,
		Levels:    repos.NewLevelRepo(db, log),
		Sections:  repos.NewSectionRepo(db, log),
		Lessons:   repos.NewLessonRepo(db, log),
		Progress:  repos.NewUserProgressRepo(db, log),
		Questions: repos.NewExamQuestionRepo(db, log),
	})
	return New(uc, log), uc
}

func TestDefaultCatalogParses(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(cat.Levels) < 2 || len(cat.Levels[0].Sections) == 0 {
		t.Fatalf("unexpected catalog %+v", cat)
	}
	for _, l := range cat.Levels {
		for _, s := range l.Sections {
			for _, lesson := range s.Lessons {
				if _, err := decodeBlocks(lesson.ContentBlocks); err != nil {
					t.Fatalf("lesson %q blocks: %v", lesson.Title, err)
				}
			}
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	s, uc := newSeeder(t)
	ctx := context.Background()
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	first, err := s.Apply(ctx, cat)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if first.LevelsCreated != 2 || first.LessonsCreated != 6 || first.QuestionsCreated != 4 || first.LevelsExisting != 0 {
		t.Fatalf("unexpected first summary %+v", first)
	}

	second, err := s.Apply(ctx, cat)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if second.LevelsCreated+second.SectionsCreated+second.LessonsCreated+second.QuestionsCreated != 0 {
		t.Fatalf("second run should create nothing, got %+v", second)
	}
	if second.LevelsExisting != 2 || second.LessonsExisting != 6 || second.QuestionsExisting != 4 {
		t.Fatalf("second run should see everything, got %+v", second)
	}

	levels, err := uc.ListLevels(ctx)
	if err != nil {
		t.Fatalf("ListLevels: %v", err)
	}
	if len(levels) != 2 || levels[0].LevelName != "A1" || !levels[0].IsFree {
		t.Fatalf("unexpected levels %+v", levels)
	}
	sections, err := uc.ListSections(ctx, levels[0].ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(sections) != 2 || len(sections[0].Lessons) != 3 || sections[0].Lessons[1].XPPoints != 75 {
		t.Fatalf("unexpected sections %+v", sections)
	}
}

func TestParseRejectsEmptyCatalog(t *testing.T) {
	if _, err := Parse([]byte("levels: []\n")); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
	if _, err := Parse([]byte("levels: [")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
