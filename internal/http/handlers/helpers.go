package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atiati82/AI-CMS-sub002/internal/http/response"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
)

// respondEngineError maps the engine error taxonomy onto HTTP statuses.
// Transition and lock conflicts are 409 so the review UI can refresh and
// retry; collaborator failures surface as upstream errors.
func respondEngineError(c *gin.Context, err error) {
	var collab *enginerr.CollaboratorError
	switch {
	case errors.Is(err, enginerr.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, enginerr.ErrRunInProgress):
		response.RespondError(c, http.StatusConflict, "run_in_progress", err)
	case enginerr.IsInvalidTransition(err):
		response.RespondError(c, http.StatusConflict, "invalid_transition", err)
	case enginerr.IsConcurrencyConflict(err):
		response.RespondError(c, http.StatusConflict, "conflict", err)
	case enginerr.IsValidation(err):
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
	case errors.As(err, &collab):
		status := http.StatusBadGateway
		if collab.Timeout {
			status = http.StatusGatewayTimeout
		}
		response.RespondError(c, status, "collaborator_error", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
