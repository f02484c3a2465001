package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/platform/cache"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type HealthHandler struct {
	log   *logger.Logger
	db    *gorm.DB
	cache cache.Cache
}

func NewHealthHandler(log *logger.Logger, db *gorm.DB, c cache.Cache) *HealthHandler {
	return &HealthHandler{log: log.With("handler", "HealthHandler"), db: db, cache: c}
}

// GET /healthcheck
// The database is required; the cache only degrades the answer.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.pingDB(ctx); err != nil {
		h.log.Warn("healthcheck database ping failed", "error", err)
		dbStatus = "down"
	}
	cacheStatus := "ok"
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			h.log.Warn("healthcheck cache ping failed", "error", err)
			cacheStatus = "degraded"
		}
	}

	status := http.StatusOK
	overall := "ok"
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
		overall = "down"
	}
	c.JSON(status, gin.H{
		"status":   overall,
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	if h.db == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
