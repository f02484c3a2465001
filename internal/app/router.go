package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/levelup-backend/internal/http"
	httpMW "github.com/yungbote/levelup-backend/internal/http/middleware"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/identity"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
	CORS gin.HandlerFunc
}

func wireMiddleware(log *logger.Logger, cfg Config) (Middleware, error) {
	log.Info("Wiring middleware...")
	verifier, err := identity.NewHS256Verifier(cfg.JWTSecretKey)
	if err != nil {
		return Middleware{}, fmt.Errorf("JWT_SECRET_KEY: %w", err)
	}
	mw := Middleware{Auth: httpMW.NewAuthMiddleware(log, verifier)}
	if len(cfg.CORSOrigins) > 0 {
		mw.CORS = httpMW.CORSWithOrigins(cfg.CORSOrigins)
	}
	return mw, nil
}

func routerConfig(log *logger.Logger, m *observability.Metrics, handlers Handlers, mw Middleware) apphttp.RouterConfig {
	return apphttp.RouterConfig{
		Log:                  log,
		Metrics:              m,
		ServiceName:          ServiceName,
		CORS:                 mw.CORS,
		AuthMiddleware:       mw.Auth,
		HealthHandler:        handlers.Health,
		CatalogHandler:       handlers.Catalog,
		ProgressHandler:      handlers.Progress,
		ExamHandler:          handlers.Exam,
		AdminCatalogHandler:  handlers.AdminCatalog,
		AdminQuestionHandler: handlers.AdminQuestion,
	}
}
