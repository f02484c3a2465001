package app

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/db"
	apphttp "github.com/yungbote/levelup-backend/internal/http"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/cache"
	"github.com/yungbote/levelup-backend/internal/platform/envutil"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Cache    cache.Cache
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services

	dbService  *db.Service
	redisWired bool
}

type Options struct {
	// AutoMigrate runs schema migration before wiring.
	AutoMigrate bool
	// NoCache skips Redis even when REDIS_ADDR is set.
	NoCache bool
}

func New(opts Options) (*App, error) {
	LoadDotEnv()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	svc, err := db.NewService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := svc.DB()
	if opts.AutoMigrate {
		if err := db.AutoMigrateAll(theDB); err != nil {
			_ = svc.Close()
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	c, redisWired := wireCache(log, cfg, opts.NoCache)
	metrics := observability.Init(log)

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, c, metrics)

	return &App{
		Log:        log,
		DB:         theDB,
		Cfg:        cfg,
		Cache:      c,
		Metrics:    metrics,
		Repos:      reposet,
		Services:   serviceset,
		dbService:  svc,
		redisWired: redisWired,
	}, nil
}

// wireCache returns the Redis catalog cache and true, or a no-op cache and
// false when Redis is off or unreachable. Catalog invalidation must reach
// every API process, so there is no in-process fallback.
func wireCache(log *logger.Logger, cfg Config, disabled bool) (cache.Cache, bool) {
	if disabled {
		return cache.Noop(), false
	}
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set; catalog cache disabled")
		return cache.Noop(), false
	}
	c, err := cache.NewRedis(log, cfg.RedisAddr)
	if err != nil {
		log.Warn("redis unavailable; catalog cache disabled", "error", err)
		return cache.Noop(), false
	}
	return c, true
}

// HTTPServer wires middleware, handlers and the router. It fails when
// JWT_SECRET_KEY is missing.
func (a *App) HTTPServer() (*apphttp.Server, error) {
	mw, err := wireMiddleware(a.Log, a.Cfg)
	if err != nil {
		return nil, err
	}
	handlerset := wireHandlers(a.Log, a.DB, a.Cache, a.Services)
	return apphttp.NewServer(routerConfig(a.Log, a.Metrics, handlerset, mw)), nil
}

// StartCollectors samples pool and cache health until ctx is done.
func (a *App) StartCollectors(ctx context.Context) {
	if a == nil || a.Metrics == nil {
		return
	}
	a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
	if a.redisWired {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cache)
	}
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.dbService != nil {
		errs = append(errs, a.dbService.Close())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
