package learning

import (
	"fmt"
	"net/http"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

// Gate enforces sequential progress within a section. A lesson at
// display_order N > 1 is unlocked once the caller has completed the active
// lesson at N-1. A gap at N-1 leaves the lesson unlocked. The same check
// backs both viewing and completing a lesson.
type Gate struct {
	Lessons  repos.LessonRepo
	Progress repos.UserProgressRepo
}

// Check returns nil when userID may open or complete lesson. An empty userID
// is an anonymous viewer and never satisfies a predecessor.
func (g Gate) Check(dbc dbctx.Context, userID string, lesson *types.Lesson) error {
	if lesson == nil || lesson.DisplayOrder <= 1 {
		return nil
	}
	prev, err := g.Lessons.GetPredecessor(dbc, lesson.SectionID, lesson.DisplayOrder)
	if err != nil {
		return apierr.Internal("load_predecessor_failed", err)
	}
	if prev == nil {
		return nil
	}
	if userID != "" {
		done, err := g.Progress.Exists(dbc, userID, prev.ID)
		if err != nil {
			return apierr.Internal("load_progress_failed", err)
		}
		if done {
			return nil
		}
	}
	return apierr.New(http.StatusForbidden, "lesson_locked",
		fmt.Errorf("complete %q first to unlock this lesson", prev.Title))
}
