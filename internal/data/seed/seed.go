package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/modules/learning"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Levels []LevelSpec `yaml:"levels"`
}

type LevelSpec struct {
	LevelName        string        `yaml:"level_name"`
	Title            string        `yaml:"title"`
	Description      string        `yaml:"description"`
	LevelOutcome     string        `yaml:"level_outcome"`
	BannerImage      string        `yaml:"banner_image"`
	WhatYouWillLearn []string      `yaml:"what_you_will_learn"`
	IsFree           bool          `yaml:"is_free"`
	DisplayOrder     int           `yaml:"display_order"`
	Sections         []SectionSpec `yaml:"sections"`
}

type SectionSpec struct {
	Name         string         `yaml:"name"`
	DisplayOrder int            `yaml:"display_order"`
	Lessons      []LessonSpec   `yaml:"lessons"`
	Questions    []QuestionSpec `yaml:"questions"`
}

// LessonSpec keeps content blocks untyped; they are decoded through the
// same JSON codec the API uses so YAML and HTTP accept the same shapes.
type LessonSpec struct {
	Title         string           `yaml:"title"`
	Description   string           `yaml:"description"`
	LessonType    string           `yaml:"lesson_type"`
	XPPoints      *int             `yaml:"xp_points"`
	DisplayOrder  int              `yaml:"display_order"`
	ContentBlocks []map[string]any `yaml:"content_blocks"`
}

type QuestionSpec struct {
	ExamTitle    string   `yaml:"exam_title"`
	Question     string   `yaml:"question"`
	Options      []string `yaml:"options"`
	Correct      int      `yaml:"correct"`
	Explanation  string   `yaml:"explanation"`
	TimeLimit    *int     `yaml:"time_limit"`
	DisplayOrder int      `yaml:"display_order"`
}

// Summary counts what Apply created and what was already present.
type Summary struct {
	LevelsCreated     int
	LevelsExisting    int
	SectionsCreated   int
	SectionsExisting  int
	LessonsCreated    int
	LessonsExisting   int
	QuestionsCreated  int
	QuestionsExisting int
}

func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cat.Levels) == 0 {
		return nil, fmt.Errorf("parse catalog: no levels")
	}
	return &cat, nil
}

// Default is the demo catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

type Seeder struct {
	uc  learning.Usecases
	log *logger.Logger
}

func New(uc learning.Usecases, baseLog *logger.Logger) *Seeder {
	return &Seeder{uc: uc, log: baseLog.With("service", "Seeder")}
}

// Apply writes cat through the admin usecases. Levels match on name,
// sections on name within their level, lessons on display_order within
// their section and questions on text within their section; matches are
// left untouched, so running Apply twice is a no-op.
func (s *Seeder) Apply(ctx context.Context, cat *Catalog) (*Summary, error) {
	sum := &Summary{}

	levels, err := s.uc.ListLevelsAdmin(ctx)
	if err != nil {
		return nil, err
	}
	levelIDs := lo.Associate(levels, func(l learning.LevelView) (string, uuid.UUID) {
		return strings.ToLower(l.LevelName), l.ID
	})

	for _, ls := range cat.Levels {
		levelID, ok := levelIDs[strings.ToLower(strings.TrimSpace(ls.LevelName))]
		if ok {
			sum.LevelsExisting++
		} else {
			created, err := s.uc.CreateLevel(ctx, learning.LevelInput{
				LevelName:        lo.ToPtr(ls.LevelName),
				Title:            lo.ToPtr(ls.Title),
				Description:      lo.ToPtr(ls.Description),
				LevelOutcome:     lo.ToPtr(ls.LevelOutcome),
				BannerImage:      lo.ToPtr(ls.BannerImage),
				WhatYouWillLearn: lo.ToPtr(ls.WhatYouWillLearn),
				IsFree:           lo.ToPtr(ls.IsFree),
				DisplayOrder:     orderPtr(ls.DisplayOrder),
			})
			if err != nil {
				return nil, fmt.Errorf("level %q: %w", ls.LevelName, err)
			}
			levelID = created.ID
			sum.LevelsCreated++
			s.log.Info("seeded level", "level_name", ls.LevelName, "level_id", levelID)
		}
		if err := s.applySections(ctx, levelID, ls, sum); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

func (s *Seeder) applySections(ctx context.Context, levelID uuid.UUID, ls LevelSpec, sum *Summary) error {
	sections, err := s.uc.ListSectionsAdmin(ctx, &levelID)
	if err != nil {
		return err
	}
	sectionIDs := lo.Associate(sections, func(sv learning.SectionView) (string, uuid.UUID) {
		return strings.ToLower(sv.Name), sv.ID
	})

	for _, ss := range ls.Sections {
		sectionID, ok := sectionIDs[strings.ToLower(strings.TrimSpace(ss.Name))]
		if ok {
			sum.SectionsExisting++
		} else {
			created, err := s.uc.CreateSection(ctx, levelID, learning.SectionInput{
				Name:         lo.ToPtr(ss.Name),
				DisplayOrder: orderPtr(ss.DisplayOrder),
			})
			if err != nil {
				return fmt.Errorf("section %q in level %q: %w", ss.Name, ls.LevelName, err)
			}
			sectionID = created.ID
			sum.SectionsCreated++
		}
		if err := s.applyLessons(ctx, sectionID, ss, sum); err != nil {
			return err
		}
		if err := s.applyQuestions(ctx, levelID, sectionID, ss, sum); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) applyLessons(ctx context.Context, sectionID uuid.UUID, ss SectionSpec, sum *Summary) error {
	lessons, err := s.uc.ListLessonsAdmin(ctx, nil, &sectionID)
	if err != nil {
		return err
	}
	taken := lo.Associate(lessons, func(l learning.LessonView) (int, struct{}) { return l.DisplayOrder, struct{}{} })

	for _, spec := range ss.Lessons {
		order := spec.DisplayOrder
		if order == 0 {
			order = 1
		}
		if _, ok := taken[order]; ok {
			sum.LessonsExisting++
			continue
		}
		blocks, err := decodeBlocks(spec.ContentBlocks)
		if err != nil {
			return fmt.Errorf("lesson %q: %w", spec.Title, err)
		}
		if _, err := s.uc.CreateLesson(ctx, sectionID, learning.LessonInput{
			Title:         lo.ToPtr(spec.Title),
			Description:   lo.ToPtr(spec.Description),
			LessonType:    lo.ToPtr(types.LessonType(spec.LessonType)),
			XPPoints:      spec.XPPoints,
			DisplayOrder:  lo.ToPtr(order),
			ContentBlocks: &blocks,
		}); err != nil {
			return fmt.Errorf("lesson %q: %w", spec.Title, err)
		}
		taken[order] = struct{}{}
		sum.LessonsCreated++
	}
	return nil
}

func (s *Seeder) applyQuestions(ctx context.Context, levelID, sectionID uuid.UUID, ss SectionSpec, sum *Summary) error {
	if len(ss.Questions) == 0 {
		return nil
	}
	existing := map[string]struct{}{}
	for page := 1; ; page++ {
		res, err := s.uc.ListQuestions(ctx, learning.QuestionListQuery{Page: page, Limit: 100, CategoryID: &sectionID})
		if err != nil {
			return err
		}
		for _, q := range res.Questions {
			existing[strings.TrimSpace(q.Question)] = struct{}{}
		}
		if page >= res.TotalPages {
			break
		}
	}

	for _, qs := range ss.Questions {
		text := strings.TrimSpace(qs.Question)
		if _, ok := existing[text]; ok {
			sum.QuestionsExisting++
			continue
		}
		if _, err := s.uc.CreateQuestion(ctx, learning.QuestionInput{
			ExamTitle:    lo.ToPtr(qs.ExamTitle),
			Level:        lo.ToPtr(levelID.String()),
			Category:     lo.ToPtr(sectionID.String()),
			Question:     lo.ToPtr(text),
			Options:      lo.ToPtr(qs.Options),
			Correct:      lo.ToPtr(qs.Correct),
			Explanation:  lo.ToPtr(qs.Explanation),
			TimeLimit:    qs.TimeLimit,
			DisplayOrder: lo.ToPtr(qs.DisplayOrder),
		}); err != nil {
			return fmt.Errorf("question %q: %w", text, err)
		}
		existing[text] = struct{}{}
		sum.QuestionsCreated++
	}
	return nil
}

func decodeBlocks(raw []map[string]any) ([]types.ContentBlock, error) {
	if len(raw) == 0 {
		return []types.ContentBlock{}, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var out []types.ContentBlock
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func orderPtr(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
