package handler

import (
	"net/http"

	"github.com/astraid/intervox-backend/internal/model"
	"github.com/astraid/intervox-backend/internal/pipeline"
	"github.com/astraid/intervox-backend/internal/response"
	"github.com/astraid/intervox-backend/internal/service"
	"github.com/astraid/intervox-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CandidateHandler handles candidate profile and history endpoints.
type CandidateHandler struct {
	candidateService *service.CandidateService
	insights         *pipeline.InsightsPipeline
	log              zerolog.Logger
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(candidateService *service.CandidateService, insights *pipeline.InsightsPipeline, log zerolog.Logger) *CandidateHandler {
	return &CandidateHandler{
		candidateService: candidateService,
		insights:         insights,
		log:              log.With().Str("component", "candidate_handler").Logger(),
	}
}

// GetHistory godoc
// GET /api/v1/candidates/:email/history
// Returns the profile and its completed interviews, newest first.
func (h *CandidateHandler) GetHistory(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	history, err := h.candidateService.GetHistory(c.Request.Context(), email)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"history": history})
}

// AnalyzeHistory godoc
// POST /api/v1/history/analyze
// Runs the performance analysis pipeline over a history payload.
func (h *CandidateHandler) AnalyzeHistory(c *gin.Context) {
	var req model.AnalyzeHistoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	insights, err := h.insights.Analyze(c.Request.Context(), req.History)
	if err != nil {
		h.log.Error().Err(err).Msg("History analysis failed")
		response.Fail(c, http.StatusBadGateway, response.ErrGenerationFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"insights": insights})
}
