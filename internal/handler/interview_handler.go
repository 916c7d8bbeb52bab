package handler

import (
	"net/http"

	"github.com/astraid/intervox-backend/internal/model"
	"github.com/astraid/intervox-backend/internal/response"
	"github.com/astraid/intervox-backend/internal/service"
	"github.com/astraid/intervox-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InterviewHandler handles interview session endpoints for the primary
// (interviewer-side) client.
type InterviewHandler struct {
	interviewService *service.InterviewService
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(interviewService *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewService: interviewService}
}

// CreateInterview godoc
// POST /api/v1/interviews
// Creates a waiting session and returns its id and session code.
func (h *InterviewHandler) CreateInterview(c *gin.Context) {
	iv, err := h.interviewService.Create(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"interview": iv})
}

// GetInterview godoc
// GET /api/v1/interviews/:interview_id
// Returns the full session snapshot.
func (h *InterviewHandler) GetInterview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	iv, err := h.interviewService.GetState(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"interview": iv})
}

// SaveUserInfo godoc
// POST /api/v1/interviews/:interview_id/user-info
// Attaches candidate info and the question configuration to the session.
func (h *InterviewHandler) SaveUserInfo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveUserInfoRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	candidateID, err := h.interviewService.SaveUserInfo(c.Request.Context(), id, req.UserInfo, req.InterviewConfig)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"candidate_id": candidateID})
}

// UpdateDraftAnswer godoc
// POST /api/v1/interviews/:interview_id/draft
// Overwrites the current question's answer text without scoring.
func (h *InterviewHandler) UpdateDraftAnswer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.DraftAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.interviewService.UpdateDraftAnswer(c.Request.Context(), id, req.Answer); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}
