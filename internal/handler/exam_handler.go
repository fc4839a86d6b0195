package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/middleware"
	"github.com/stemsi/gscribe-backend/internal/model"
	"github.com/stemsi/gscribe-backend/internal/response"
	"github.com/stemsi/gscribe-backend/internal/service"
	"github.com/stemsi/gscribe-backend/internal/validator"
)

// ExamHandler handles exam ingestion and retrieval.
type ExamHandler struct {
	examService *service.ExamService
	log         zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		examService: examService,
		log:         log.With().Str("component", "exam_handler").Logger(),
	}
}

// CreateExam godoc
// POST /exam
// Reads an exam from the setter's spreadsheet, validates and stores it.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// ListExams godoc
// GET /exam/all
func (h *ExamHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetExam godoc
// GET /exam/:id
// Returns one of the setter's own exams with its questions.
func (h *ExamHandler) GetExam(c *gin.Context) {
	examID, ok := parseExamID(c)
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), middleware.GetUserID(c), examID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// GetPaper godoc
// GET /exam/:id/paper
// Returns the exam as shown to examinees.
func (h *ExamHandler) GetPaper(c *gin.Context) {
	examID, ok := parseExamID(c)
	if !ok {
		return
	}

	exam, err := h.examService.Paper(c.Request.Context(), examID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam.Paper()})
}

func parseExamID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
