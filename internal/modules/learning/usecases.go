package learning

import (
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/cache"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

var tracer = otel.Tracer("levelup/modules/learning")

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Levels    repos.LevelRepo
	Sections  repos.SectionRepo
	Lessons   repos.LessonRepo
	Progress  repos.UserProgressRepo
	Questions repos.ExamQuestionRepo

	// Cache holds public catalog listings. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration

	Metrics *observability.Metrics
	Now     func() time.Time
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop()
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = 5 * time.Minute
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Usecases{deps: deps}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

// Gate returns the unlock check shared by the lesson view and completion.
func (u Usecases) Gate() Gate {
	return Gate{Lessons: u.deps.Lessons, Progress: u.deps.Progress}
}
