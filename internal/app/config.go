package app

import (
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/levelup-backend/internal/data/db"
	"github.com/yungbote/levelup-backend/internal/platform/envutil"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

const ServiceName = "levelup-api"

type Config struct {
	LogMode         string
	Environment     string
	Version         string
	Port            string
	JWTSecretKey    string
	RedisAddr       string
	CatalogCacheTTL time.Duration
	MetricsAddr     string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	DB              db.Config
}

// LoadDotEnv reads .env when present. Real environment variables win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode:         envutil.String("LOG_MODE", "development"),
		Environment:     envutil.String("APP_ENV", "development"),
		Version:         envutil.String("APP_VERSION", "dev"),
		Port:            envutil.String("PORT", "8080"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", ""),
		RedisAddr:       envutil.String("REDIS_ADDR", ""),
		CatalogCacheTTL: envutil.Seconds("CATALOG_CACHE_TTL_SECONDS", 5*time.Minute),
		MetricsAddr:     envutil.String("METRICS_ADDR", ":9090"),
		CORSOrigins:     envutil.List("CORS_ALLOW_ORIGINS", nil),
		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		DB:              db.ConfigFromEnv(),
	}
	if log != nil {
		log.Info("config loaded",
			"env", cfg.Environment,
			"port", cfg.Port,
			"db_driver", cfg.DB.Driver,
			"redis", cfg.RedisAddr != "",
			"catalog_cache_ttl", cfg.CatalogCacheTTL.String(),
		)
	}
	return cfg
}
