package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/http/response"
	"github.com/yungbote/levelup-backend/internal/modules/learning"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type AdminCatalogHandler struct {
	log      *logger.Logger
	learning learning.Usecases
}

func NewAdminCatalogHandler(log *logger.Logger, uc learning.Usecases) *AdminCatalogHandler {
	log = log.With("handler", "AdminCatalogHandler")
	return &AdminCatalogHandler{log: log, learning: uc.WithLog(log)}
}

// ---------- Levels ----------

// GET /api/v1/admin/levels
func (h *AdminCatalogHandler) ListLevels(c *gin.Context) {
	levels, err := h.learning.ListLevelsAdmin(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err, "list_levels_failed")
		return
	}
	response.RespondOK(c, gin.H{"levels": levels})
}

// POST /api/v1/admin/levels
func (h *AdminCatalogHandler) CreateLevel(c *gin.Context) {
	var in learning.LevelInput
	if !bindJSON(c, &in) {
		return
	}
	level, err := h.learning.CreateLevel(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "create_level_failed")
		return
	}
	response.RespondCreated(c, gin.H{"level": level})
}

// GET /api/v1/admin/levels/:levelId
func (h *AdminCatalogHandler) GetLevel(c *gin.Context) {
	id, ok := pathID(c, "levelId", "invalid_level_id")
	if !ok {
		return
	}
	detail, err := h.learning.GetLevelAdmin(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "get_level_failed")
		return
	}
	response.RespondOK(c, detail)
}

// PUT /api/v1/admin/levels/:levelId
func (h *AdminCatalogHandler) UpdateLevel(c *gin.Context) {
	id, ok := pathID(c, "levelId", "invalid_level_id")
	if !ok {
		return
	}
	var in learning.LevelInput
	if !bindJSON(c, &in) {
		return
	}
	level, err := h.learning.UpdateLevel(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "update_level_failed")
		return
	}
	response.RespondOK(c, gin.H{"level": level})
}

// PATCH /api/v1/admin/levels/:levelId/toggle
func (h *AdminCatalogHandler) ToggleLevel(c *gin.Context) {
	id, ok := pathID(c, "levelId", "invalid_level_id")
	if !ok {
		return
	}
	level, err := h.learning.ToggleLevel(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "toggle_level_failed")
		return
	}
	response.RespondOK(c, gin.H{"level": level})
}

// DELETE /api/v1/admin/levels/:levelId
// Sections and lessons go with it.
func (h *AdminCatalogHandler) DeleteLevel(c *gin.Context) {
	id, ok := pathID(c, "levelId", "invalid_level_id")
	if !ok {
		return
	}
	if err := h.learning.DeleteLevel(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, h.log, err, "delete_level_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// ---------- Sections ----------

// GET /api/v1/admin/sections?level=
func (h *AdminCatalogHandler) ListSections(c *gin.Context) {
	levelID, ok := queryID(c, "level")
	if !ok {
		return
	}
	sections, err := h.learning.ListSectionsAdmin(c.Request.Context(), levelID)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "list_sections_failed")
		return
	}
	response.RespondOK(c, gin.H{"sections": sections})
}

// POST /api/v1/admin/levels/:levelId/sections
func (h *AdminCatalogHandler) CreateSection(c *gin.Context) {
	levelID, ok := pathID(c, "levelId", "invalid_level_id")
	if !ok {
		return
	}
	var in learning.SectionInput
	if !bindJSON(c, &in) {
		return
	}
	section, err := h.learning.CreateSection(c.Request.Context(), levelID, in)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "create_section_failed")
		return
	}
	response.RespondCreated(c, gin.H{"section": section})
}

// GET /api/v1/admin/sections/:sectionId
func (h *AdminCatalogHandler) GetSection(c *gin.Context) {
	id, ok := pathID(c, "sectionId", "invalid_section_id")
	if !ok {
		return
	}
	detail, err := h.learning.GetSectionAdmin(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "get_section_failed")
		return
	}
	response.RespondOK(c, detail)
}

// PUT /api/v1/admin/sections/:sectionId
func (h *AdminCatalogHandler) UpdateSection(c *gin.Context) {
	id, ok := pathID(c, "sectionId", "invalid_section_id")
	if !ok {
		return
	}
	var in learning.SectionInput
	if !bindJSON(c, &in) {
		return
	}
	section, err := h.learning.UpdateSection(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "update_section_failed")
		return
	}
	response.RespondOK(c, gin.H{"section": section})
}

// PATCH /api/v1/admin/sections/:sectionId/toggle
func (h *AdminCatalogHandler) ToggleSection(c *gin.Context) {
	id, ok := pathID(c, "sectionId", "invalid_section_id")
	if !ok {
		return
	}
	section, err := h.learning.ToggleSection(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "toggle_section_failed")
		return
	}
	response.RespondOK(c, gin.H{"section": section})
}

// DELETE /api/v1/admin/sections/:sectionId
func (h *AdminCatalogHandler) DeleteSection(c *gin.Context) {
	id, ok := pathID(c, "sectionId", "invalid_section_id")
	if !ok {
		return
	}
	if err := h.learning.DeleteSection(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, h.log, err, "delete_section_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// ---------- Lessons ----------

// lessonRequest shadows content_blocks so it can arrive either as an array
// or as a JSON-encoded string (multipart admin forms send the latter).
type lessonRequest struct {
	learning.LessonInput
	ContentBlocks json.RawMessage `json:"content_blocks"`
}

func (r lessonRequest) input() (learning.LessonInput, error) {
	in := r.LessonInput
	blocks, err := decodeContentBlocks(r.ContentBlocks)
	if err != nil {
		return in, err
	}
	in.ContentBlocks = blocks
	return in, nil
}

func decodeContentBlocks(raw json.RawMessage) (*[]types.ContentBlock, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	res := gjson.ParseBytes(raw)
	switch res.Type {
	case gjson.Null:
		return nil, nil
	case gjson.String:
		if !gjson.Valid(res.Str) {
			return nil, errors.New("content_blocks string is not valid JSON")
		}
		raw = json.RawMessage(res.Str)
		res = gjson.Parse(res.Str)
	}
	if !res.IsArray() {
		return nil, errors.New("content_blocks must be an array")
	}
	var blocks []types.ContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, err
	}
	if blocks == nil {
		blocks = []types.ContentBlock{}
	}
	return &blocks, nil
}

func (h *AdminCatalogHandler) bindLesson(c *gin.Context) (learning.LessonInput, bool) {
	var req lessonRequest
	if !bindJSON(c, &req) {
		return learning.LessonInput{}, false
	}
	in, err := req.input()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_content_blocks", err)
		return in, false
	}
	return in, true
}

// GET /api/v1/admin/lessons?level=&section=
func (h *AdminCatalogHandler) ListLessons(c *gin.Context) {
	levelID, ok := queryID(c, "level")
	if !ok {
		return
	}
	sectionID, ok := queryID(c, "section")
	if !ok {
		return
	}
	lessons, err := h.learning.ListLessonsAdmin(c.Request.Context(), levelID, sectionID)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "list_lessons_failed")
		return
	}
	response.RespondOK(c, gin.H{"lessons": lessons})
}

// POST /api/v1/admin/sections/:sectionId/lessons
func (h *AdminCatalogHandler) CreateLesson(c *gin.Context) {
	sectionID, ok := pathID(c, "sectionId", "invalid_section_id")
	if !ok {
		return
	}
	in, ok := h.bindLesson(c)
	if !ok {
		return
	}
	lesson, err := h.learning.CreateLesson(c.Request.Context(), sectionID, in)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "create_lesson_failed")
		return
	}
	response.RespondCreated(c, gin.H{"lesson": lesson})
}

// GET /api/v1/admin/lessons/:lessonId
func (h *AdminCatalogHandler) GetLesson(c *gin.Context) {
	id, ok := pathID(c, "lessonId", "invalid_lesson_id")
	if !ok {
		return
	}
	lesson, err := h.learning.GetLessonAdmin(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "get_lesson_failed")
		return
	}
	response.RespondOK(c, gin.H{"lesson": lesson})
}

// PUT /api/v1/admin/lessons/:lessonId
func (h *AdminCatalogHandler) UpdateLesson(c *gin.Context) {
	id, ok := pathID(c, "lessonId", "invalid_lesson_id")
	if !ok {
		return
	}
	in, ok := h.bindLesson(c)
	if !ok {
		return
	}
	lesson, err := h.learning.UpdateLesson(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "update_lesson_failed")
		return
	}
	response.RespondOK(c, gin.H{"lesson": lesson})
}

// PATCH /api/v1/admin/lessons/:lessonId/toggle
func (h *AdminCatalogHandler) ToggleLesson(c *gin.Context) {
	id, ok := pathID(c, "lessonId", "invalid_lesson_id")
	if !ok {
		return
	}
	lesson, err := h.learning.ToggleLesson(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "toggle_lesson_failed")
		return
	}
	response.RespondOK(c, gin.H{"lesson": lesson})
}

// DELETE /api/v1/admin/lessons/:lessonId
func (h *AdminCatalogHandler) DeleteLesson(c *gin.Context) {
	id, ok := pathID(c, "lessonId", "invalid_lesson_id")
	if !ok {
		return
	}
	if err := h.learning.DeleteLesson(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, h.log, err, "delete_lesson_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
