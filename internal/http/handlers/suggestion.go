package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atiati82/AI-CMS-sub002/internal/data/repos"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/lifecycle"
	"github.com/atiati82/AI-CMS-sub002/internal/http/response"
)

type SuggestionHandler struct {
	suggestions repos.SuggestionRepo
	lifecycle   *lifecycle.Manager
}

func NewSuggestionHandler(suggestions repos.SuggestionRepo, lifecycleMgr *lifecycle.Manager) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions, lifecycle: lifecycleMgr}
}

// GET /api/suggestions?status=pending&page_id=...&limit=100
func (h *SuggestionHandler) ListSuggestions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	var pageID *uuid.UUID
	if raw := c.Query("page_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_page_id", err)
			return
		}
		pageID = &id
	}
	out, err := h.suggestions.List(c.Request.Context(), c.Query("status"), pageID, limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"suggestions": out})
}

// POST /api/suggestions/:id/accept
func (h *SuggestionHandler) AcceptSuggestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_suggestion_id", err)
		return
	}
	s, err := h.lifecycle.AcceptSuggestion(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"suggestion": s})
}

// POST /api/suggestions/:id/reject
func (h *SuggestionHandler) RejectSuggestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_suggestion_id", err)
		return
	}
	s, err := h.lifecycle.RejectSuggestion(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"suggestion": s})
}

// POST /api/suggestions/:id/apply
func (h *SuggestionHandler) ApplySuggestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_suggestion_id", err)
		return
	}
	s, diff, err := h.lifecycle.ApplySuggestion(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"suggestion": s, "changed_fields": diff})
}
