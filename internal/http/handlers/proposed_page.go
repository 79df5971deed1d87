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

type ProposedPageHandler struct {
	proposed  repos.ProposedPageRepo
	lifecycle *lifecycle.Manager
}

func NewProposedPageHandler(proposed repos.ProposedPageRepo, lifecycleMgr *lifecycle.Manager) *ProposedPageHandler {
	return &ProposedPageHandler{proposed: proposed, lifecycle: lifecycleMgr}
}

// GET /api/proposed-pages?status=proposed&limit=100
func (h *ProposedPageHandler) ListProposedPages(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	out, err := h.proposed.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"proposed_pages": out})
}

// POST /api/proposed-pages/:id/approve
func (h *ProposedPageHandler) ApproveProposedPage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_proposed_page_id", err)
		return
	}
	p, err := h.lifecycle.ApproveProposedPage(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"proposed_page": p})
}

// POST /api/proposed-pages/:id/reject
func (h *ProposedPageHandler) RejectProposedPage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_proposed_page_id", err)
		return
	}
	p, err := h.lifecycle.RejectProposedPage(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"proposed_page": p})
}

// POST /api/proposed-pages/:id/create
//
// Materializes an approved proposal as a draft page in the page store.
func (h *ProposedPageHandler) CreateProposedPage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_proposed_page_id", err)
		return
	}
	p, err := h.lifecycle.CreateProposedPage(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"proposed_page": p})
}
