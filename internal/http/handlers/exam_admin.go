package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/levelup-backend/internal/http/response"
	"github.com/yungbote/levelup-backend/internal/modules/learning"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type AdminQuestionHandler struct {
	log      *logger.Logger
	learning learning.Usecases
}

func NewAdminQuestionHandler(log *logger.Logger, uc learning.Usecases) *AdminQuestionHandler {
	log = log.With("handler", "AdminQuestionHandler")
	return &AdminQuestionHandler{log: log, learning: uc.WithLog(log)}
}

// GET /api/v1/admin/questions?page=&limit=&search=&level=&category=&is_active=
func (h *AdminQuestionHandler) ListQuestions(c *gin.Context) {
	levelID, ok := queryID(c, "level")
	if !ok {
		return
	}
	categoryID, ok := queryID(c, "category")
	if !ok {
		return
	}
	active, ok := queryBool(c, "is_active")
	if !ok {
		return
	}
	page, err := h.learning.ListQuestions(c.Request.Context(), learning.QuestionListQuery{
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 0),
		Search:     c.Query("search"),
		LevelID:    levelID,
		CategoryID: categoryID,
		IsActive:   active,
	})
	if err != nil {
		response.RespondAPIError(c, h.log, err, "list_questions_failed")
		return
	}
	response.RespondOK(c, page)
}

// GET /api/v1/admin/questions/stats
func (h *AdminQuestionHandler) Stats(c *gin.Context) {
	stats, err := h.learning.QuestionStats(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err, "question_stats_failed")
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}

// POST /api/v1/admin/questions
func (h *AdminQuestionHandler) CreateQuestion(c *gin.Context) {
	var in learning.QuestionInput
	if !bindJSON(c, &in) {
		return
	}
	q, err := h.learning.CreateQuestion(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "create_question_failed")
		return
	}
	response.RespondCreated(c, gin.H{"question": q})
}

// GET /api/v1/admin/questions/:questionId
func (h *AdminQuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := pathID(c, "questionId", "invalid_question_id")
	if !ok {
		return
	}
	q, err := h.learning.GetQuestion(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "get_question_failed")
		return
	}
	response.RespondOK(c, gin.H{"question": q})
}

// PUT /api/v1/admin/questions/:questionId
func (h *AdminQuestionHandler) UpdateQuestion(c *gin.Context) {
	id, ok := pathID(c, "questionId", "invalid_question_id")
	if !ok {
		return
	}
	var in learning.QuestionInput
	if !bindJSON(c, &in) {
		return
	}
	q, err := h.learning.UpdateQuestion(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "update_question_failed")
		return
	}
	response.RespondOK(c, gin.H{"question": q})
}

// PATCH /api/v1/admin/questions/:questionId/toggle
func (h *AdminQuestionHandler) ToggleQuestion(c *gin.Context) {
	id, ok := pathID(c, "questionId", "invalid_question_id")
	if !ok {
		return
	}
	q, err := h.learning.ToggleQuestion(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "toggle_question_failed")
		return
	}
	response.RespondOK(c, gin.H{"question": q})
}

// DELETE /api/v1/admin/questions/:questionId
func (h *AdminQuestionHandler) DeleteQuestion(c *gin.Context) {
	id, ok := pathID(c, "questionId", "invalid_question_id")
	if !ok {
		return
	}
	if err := h.learning.DeleteQuestion(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, h.log, err, "delete_question_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
