package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atiati82/AI-CMS-sub002/internal/data/repos"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/lifecycle"
	"github.com/atiati82/AI-CMS-sub002/internal/http/response"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/counters"
)

type BlockHandler struct {
	blocks    repos.ContentBlockRepo
	lifecycle *lifecycle.Manager
	counters  counters.Buffer
}

func NewBlockHandler(blocks repos.ContentBlockRepo, lifecycleMgr *lifecycle.Manager, counterBuf counters.Buffer) *BlockHandler {
	return &BlockHandler{blocks: blocks, lifecycle: lifecycleMgr, counters: counterBuf}
}

// GET /api/blocks/:id/live — :id is the page id, not a block id. The render
// path calls this for the live block per hook; only published blocks come
// back.
func (h *BlockHandler) ListPublishedBlocks(c *gin.Context) {
	pageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_page_id", err)
		return
	}
	out, err := h.blocks.ListPublished(c.Request.Context(), pageID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"blocks": out})
}

// POST /api/blocks/:id/publish
func (h *BlockHandler) PublishBlock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_block_id", err)
		return
	}
	b, err := h.lifecycle.PublishBlock(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"block": b})
}

// POST /api/blocks/:id/archive
func (h *BlockHandler) ArchiveBlock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_block_id", err)
		return
	}
	b, err := h.lifecycle.ArchiveBlock(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"block": b})
}

// POST /api/blocks/:id/impression
//
// Fire-and-forget: buffered in redis, flushed to postgres by the nightly run.
// Without a buffer the count goes straight to the database.
func (h *BlockHandler) RecordImpression(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_block_id", err)
		return
	}
	if h.counters != nil {
		h.counters.IncrImpression(c.Request.Context(), id)
	} else if err := h.blocks.AddCounters(c.Request.Context(), id, 1, 0); err != nil {
		respondEngineError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// POST /api/blocks/:id/click
func (h *BlockHandler) RecordClick(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_block_id", err)
		return
	}
	if h.counters != nil {
		h.counters.IncrClick(c.Request.Context(), id)
	} else if err := h.blocks.AddCounters(c.Request.Context(), id, 0, 1); err != nil {
		respondEngineError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
