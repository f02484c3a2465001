package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/yungbote/levelup-backend/internal/http/response"
	"github.com/yungbote/levelup-backend/internal/modules/learning"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type ExamHandler struct {
	log      *logger.Logger
	learning learning.Usecases
}

func NewExamHandler(log *logger.Logger, uc learning.Usecases) *ExamHandler {
	log = log.With("handler", "ExamHandler")
	return &ExamHandler{log: log, learning: uc.WithLog(log)}
}

// GET /api/v1/questions/exam?level=&category=
func (h *ExamHandler) GetExamQuestions(c *gin.Context) {
	levelID, ok := queryID(c, "level")
	if !ok {
		return
	}
	categoryID, ok := queryID(c, "category")
	if !ok {
		return
	}
	questions, err := h.learning.GetExamQuestions(c.Request.Context(), levelID, categoryID)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "list_exam_questions_failed")
		return
	}
	response.RespondOK(c, gin.H{"questions": questions})
}

// POST /api/v1/questions/submit
// body: { "answers": [ { "question_id": "...", "selected_index": 1 } ] }
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	answers, err := parseAnswers(body)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_answers", err)
		return
	}
	score, err := h.learning.SubmitExam(c.Request.Context(), answers)
	if err != nil {
		response.RespondAPIError(c, h.log, err, "submit_exam_failed")
		return
	}
	response.RespondOK(c, score)
}

// parseAnswers reads answers leniently: a selected_index that is not an
// integer is treated as not answered rather than failing the submission.
func parseAnswers(body []byte) ([]learning.ExamAnswer, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("request body must be valid JSON")
	}
	arr := gjson.GetBytes(body, "answers")
	if !arr.IsArray() {
		return nil, errors.New("answers must be an array")
	}
	out := []learning.ExamAnswer{}
	for _, el := range arr.Array() {
		a := learning.ExamAnswer{QuestionID: el.Get("question_id").String()}
		if sel := el.Get("selected_index"); sel.Type == gjson.Number && sel.Num == float64(int(sel.Num)) {
			idx := int(sel.Num)
			a.SelectedIndex = &idx
		}
		out = append(out, a)
	}
	return out, nil
}
