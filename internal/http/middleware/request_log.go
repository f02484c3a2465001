package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/levelup-backend/internal/platform/ctxutil"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

// RequestLogger writes one line per request, including the catalog and
// question ids bound by the route.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := requestFields(c, time.Since(start))
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func requestFields(c *gin.Context, took time.Duration) []interface{} {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	fields := []interface{}{
		"method", strings.ToUpper(c.Request.Method),
		"route", route,
		"status", c.Writer.Status(),
		"duration_ms", took.Milliseconds(),
	}
	if strings.HasPrefix(route, "/api/v1/admin") {
		fields = append(fields, "admin", true)
	}
	for _, p := range c.Params {
		if key := routeIDField(p.Key); key != "" {
			fields = append(fields, key, p.Value)
		}
	}

	ctx := c.Request.Context()
	if td := ctxutil.GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			fields = append(fields, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			fields = append(fields, "request_id", td.RequestID)
		}
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != "" {
		fields = append(fields, "user_id", rd.UserID)
		if rd.Role != "" {
			fields = append(fields, "role", rd.Role)
		}
	}
	return fields
}

// routeIDField maps a route parameter name to its log key, "" for
// parameters that are not ids.
func routeIDField(param string) string {
	switch param {
	case "levelId":
		return "level_id"
	case "sectionId":
		return "section_id"
	case "lessonId":
		return "lesson_id"
	case "questionId":
		return "question_id"
	}
	return ""
}
