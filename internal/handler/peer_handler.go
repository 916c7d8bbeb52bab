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

// PeerHandler handles the candidate-side client: joining by session code
// and driving the question flow.
type PeerHandler struct {
	interviewService *service.InterviewService
}

// NewPeerHandler creates a new PeerHandler.
func NewPeerHandler(interviewService *service.InterviewService) *PeerHandler {
	return &PeerHandler{interviewService: interviewService}
}

// Connect godoc
// POST /api/v1/peer/connect
// Joins the session matching the 4-digit code and starts question
// generation. Succeeds only while the session is waiting for a peer.
func (h *PeerHandler) Connect(c *gin.Context) {
	var req model.ConnectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	iv, err := h.interviewService.Connect(c.Request.Context(), req.SessionCode)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"interview": iv})
}

// SubmitAnswer godoc
// POST /api/v1/peer/interviews/:interview_id/answer
// Finalizes the current question's answer and dispatches scoring.
func (h *PeerHandler) SubmitAnswer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.interviewService.SubmitAnswer(c.Request.Context(), id, req.Answer); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "submitted"})
}

// AdvanceQuestion godoc
// POST /api/v1/peer/interviews/:interview_id/advance
// Forces navigation to a later question without waiting for scoring.
func (h *PeerHandler) AdvanceQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AdvanceQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.interviewService.AdvanceQuestion(c.Request.Context(), id, *req.NextIndex); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "advanced"})
}
