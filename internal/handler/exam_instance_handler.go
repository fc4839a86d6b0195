package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/middleware"
	"github.com/stemsi/gscribe-backend/internal/model"
	"github.com/stemsi/gscribe-backend/internal/response"
	"github.com/stemsi/gscribe-backend/internal/service"
	"github.com/stemsi/gscribe-backend/internal/validator"
)

// ExamInstanceHandler handles examinee attempts.
type ExamInstanceHandler struct {
	instanceService *service.ExamInstanceService
	log             zerolog.Logger
}

// NewExamInstanceHandler creates a new ExamInstanceHandler.
func NewExamInstanceHandler(instanceService *service.ExamInstanceService, log zerolog.Logger) *ExamInstanceHandler {
	return &ExamInstanceHandler{
		instanceService: instanceService,
		log:             log.With().Str("component", "exam_instance_handler").Logger(),
	}
}

// StartExam godoc
// POST /exam/start
// Opens the single attempt for a roll number and returns the exam paper.
func (h *ExamInstanceHandler) StartExam(c *gin.Context) {
	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inst, exam, err := h.instanceService.Start(c.Request.Context(), req.ExamID, req.RollNumber, middleware.GetUserID(c))
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, model.ExamInstanceResponse{Instance: inst, Exam: exam.Paper()})
}

// SubmitExam godoc
// POST /exam/submit
// Closes an attempt and records the answers.
func (h *ExamInstanceHandler) SubmitExam(c *gin.Context) {
	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inst, err := h.instanceService.Submit(c.Request.Context(), service.SubmitInput{
		InstanceID:    req.ExamInstanceID,
		ExamID:        req.ExamID,
		StudentUserID: middleware.GetUserID(c),
		RollNum:       req.RollNumber,
		Answers:       req.Answers,
	})
	if err != nil {
		// The submission itself is stored; only the sheet row is missing.
		if errors.Is(err, service.ErrResponseNotRecorded) && inst != nil {
			h.log.Warn().Err(err).Int64("instance_id", inst.ID).Msg("Submission kept without response row")
			response.FailWithData(c, http.StatusBadGateway, response.ErrResponseNotRecorded, gin.H{"instance": inst})
			return
		}
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"instance": inst})
}
