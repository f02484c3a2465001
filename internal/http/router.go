package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/levelup-backend/internal/http/handlers"
	httpMW "github.com/yungbote/levelup-backend/internal/http/middleware"
	"github.com/yungbote/levelup-backend/internal/http/response"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

const adminRole = "admin"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORS        gin.HandlerFunc

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler        *httpH.HealthHandler
	CatalogHandler       *httpH.CatalogHandler
	ProgressHandler      *httpH.ProgressHandler
	ExamHandler          *httpH.ExamHandler
	AdminCatalogHandler  *httpH.AdminCatalogHandler
	AdminQuestionHandler *httpH.AdminQuestionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		if cfg.Log != nil {
			cfg.Log.Error("panic recovered", "path", c.Request.URL.Path, "panic", rec)
		}
		response.AbortError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
	}))
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	} else {
		r.Use(httpMW.CORS())
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")

	optionalAuth := func(c *gin.Context) { c.Next() }
	requireAuth := func(c *gin.Context) {
		response.AbortError(c, http.StatusUnauthorized, "unauthorized", errors.New("authentication is not configured"))
	}
	if cfg.AuthMiddleware != nil {
		optionalAuth = cfg.AuthMiddleware.OptionalAuth()
		requireAuth = cfg.AuthMiddleware.RequireAuth()
	}

	// Catalog (public)
	if cfg.CatalogHandler != nil {
		api.GET("/levels", cfg.CatalogHandler.ListLevels)
		api.GET("/levels/:levelId/sections", cfg.CatalogHandler.ListSections)
		api.GET("/lessons/:lessonId", optionalAuth, cfg.CatalogHandler.GetLesson)
	}

	// Exams (public)
	if cfg.ExamHandler != nil {
		api.GET("/questions/exam", cfg.ExamHandler.GetExamQuestions)
		api.POST("/questions/submit", cfg.ExamHandler.SubmitExam)
	}

	// Progress
	if cfg.ProgressHandler != nil {
		protected := api.Group("/", requireAuth)
		protected.POST("/lessons/:lessonId/complete", cfg.ProgressHandler.CompleteLesson)
		protected.GET("/levels/:levelId/progress", cfg.ProgressHandler.GetLevelProgress)
	}

	admin := api.Group("/admin", requireAuth, httpMW.RequireRole(adminRole))

	if h := cfg.AdminCatalogHandler; h != nil {
		admin.GET("/levels", h.ListLevels)
		admin.POST("/levels", h.CreateLevel)
		admin.GET("/levels/:levelId", h.GetLevel)
		admin.PUT("/levels/:levelId", h.UpdateLevel)
		admin.PATCH("/levels/:levelId/toggle", h.ToggleLevel)
		admin.DELETE("/levels/:levelId", h.DeleteLevel)
		admin.POST("/levels/:levelId/sections", h.CreateSection)

		admin.GET("/sections", h.ListSections)
		admin.GET("/sections/:sectionId", h.GetSection)
		admin.PUT("/sections/:sectionId", h.UpdateSection)
		admin.PATCH("/sections/:sectionId/toggle", h.ToggleSection)
		admin.DELETE("/sections/:sectionId", h.DeleteSection)
		admin.POST("/sections/:sectionId/lessons", h.CreateLesson)

		admin.GET("/lessons", h.ListLessons)
		admin.GET("/lessons/:lessonId", h.GetLesson)
		admin.PUT("/lessons/:lessonId", h.UpdateLesson)
		admin.PATCH("/lessons/:lessonId/toggle", h.ToggleLesson)
		admin.DELETE("/lessons/:lessonId", h.DeleteLesson)
	}

	if h := cfg.AdminQuestionHandler; h != nil {
		admin.GET("/questions", h.ListQuestions)
		admin.POST("/questions", h.CreateQuestion)
		admin.GET("/questions/stats", h.Stats)
		admin.GET("/questions/:questionId", h.GetQuestion)
		admin.PUT("/questions/:questionId", h.UpdateQuestion)
		admin.PATCH("/questions/:questionId/toggle", h.ToggleQuestion)
		admin.DELETE("/questions/:questionId", h.DeleteQuestion)
	}

	r.NoRoute(func(c *gin.Context) {
		response.RespondError(c, http.StatusNotFound, "route_not_found", errors.New("route not found"))
	})

	return r
}
