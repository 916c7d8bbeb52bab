package handler

import (
	"errors"
	"net/http"

	"github.com/astraid/intervox-backend/internal/pipeline"
	"github.com/astraid/intervox-backend/internal/response"
	"github.com/astraid/intervox-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// failFromService maps service sentinel errors onto the HTTP error
// envelope. Unknown errors collapse to a 500 without leaking details.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrCandidateNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidSessionCode):
		response.Fail(c, http.StatusNotFound, response.ErrInvalidSessionCode)
	case errors.Is(err, service.ErrAlreadyConnected):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyConnected)
	case errors.Is(err, service.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
	case errors.Is(err, service.ErrInterviewCompleted):
		response.Fail(c, http.StatusConflict, response.ErrInterviewCompleted)
	case errors.Is(err, pipeline.ErrGenerationFailed):
		response.Fail(c, http.StatusBadGateway, response.ErrGenerationFailed)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
