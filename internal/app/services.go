package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/modules/learning"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/cache"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type Services struct {
	Learning learning.Usecases
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c cache.Cache, m *observability.Metrics) Services {
	log.Info("Wiring services...")
	return Services{
		Learning: learning.New(learning.UsecasesDeps{
			DB:        db,
			Log:       log,
			Levels:    r.Level,
			Sections:  r.Section,
			Lessons:   r.Lesson,
			Progress:  r.UserProgress,
			Questions: r.ExamQuestion,
			Cache:     c,
			CacheTTL:  cfg.CatalogCacheTTL,
			Metrics:   m,
		}),
	}
}
