package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/levelup-backend/internal/http/response"
	"github.com/yungbote/levelup-backend/internal/modules/learning"
	"github.com/yungbote/levelup-backend/internal/platform/ctxutil"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type ProgressHandler struct {
	log      *logger.Logger
	learning learning.Usecases
}

func NewProgressHandler(log *logger.Logger, uc learning.Usecases) *ProgressHandler {
	log = log.With("handler", "ProgressHandler")
	return &ProgressHandler{log: log, learning: uc.WithLog(log)}
}

// POST /api/v1/lessons/:lessonId/complete
// 201 on the first completion, 200 with already_done on repeats.
func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	lessonID, ok := pathID(c, "lessonId", "invalid_lesson_id")
	if !ok {
		return
	}
	out, err := h.learning.CompleteLesson(c.Request.Context(), ctxutil.UserID(c.Request.Context()), lessonID)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "complete_lesson_failed")
		return
	}
	c.JSON(out.Status(), out)
}

// GET /api/v1/levels/:levelId/progress
func (h *ProgressHandler) GetLevelProgress(c *gin.Context) {
	levelID, ok := pathID(c, "levelId", "invalid_level_id")
	if !ok {
		return
	}
	prog, err := h.learning.GetLevelProgress(c.Request.Context(), ctxutil.UserID(c.Request.Context()), levelID)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "get_progress_failed")
		return
	}
	response.RespondOK(c, gin.H{"progress": prog})
}
