package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/levelup-backend/internal/http/response"
	"github.com/yungbote/levelup-backend/internal/modules/learning"
	"github.com/yungbote/levelup-backend/internal/platform/ctxutil"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type CatalogHandler struct {
	log      *logger.Logger
	learning learning.Usecases
}

func NewCatalogHandler(log *logger.Logger, uc learning.Usecases) *CatalogHandler {
	log = log.With("handler", "CatalogHandler")
	return &CatalogHandler{log: log, learning: uc.WithLog(log)}
}

// GET /api/v1/levels
func (h *CatalogHandler) ListLevels(c *gin.Context) {
	levels, err := h.learning.ListLevels(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err, "list_levels_failed")
		return
	}
	response.RespondOK(c, gin.H{"levels": levels})
}

// GET /api/v1/levels/:levelId/sections
func (h *CatalogHandler) ListSections(c *gin.Context) {
	levelID, ok := pathID(c, "levelId", "invalid_level_id")
	if !ok {
		return
	}
	sections, err := h.learning.ListSections(c.Request.Context(), levelID)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "list_sections_failed")
		return
	}
	response.RespondOK(c, gin.H{"sections": sections})
}

// GET /api/v1/lessons/:lessonId
// Anonymous viewers only see lessons that need no prior completion.
func (h *CatalogHandler) GetLesson(c *gin.Context) {
	lessonID, ok := pathID(c, "lessonId", "invalid_lesson_id")
	if !ok {
		return
	}
	page, err := h.learning.GetLesson(c.Request.Context(), ctxutil.UserID(c.Request.Context()), lessonID)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "get_lesson_failed")
		return
	}
	response.RespondOK(c, page)
}
