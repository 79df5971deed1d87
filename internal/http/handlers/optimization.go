package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atiati82/AI-CMS-sub002/internal/data/repos"
	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/scheduler"
	"github.com/atiati82/AI-CMS-sub002/internal/http/response"
)

type OptimizationHandler struct {
	sched *scheduler.Scheduler
	runs  repos.OptimizationRunRepo
}

func NewOptimizationHandler(sched *scheduler.Scheduler, runs repos.OptimizationRunRepo) *OptimizationHandler {
	return &OptimizationHandler{sched: sched, runs: runs}
}

// POST /api/optimization/run
//
// Blocks until the pass finishes and returns the full run report. A second
// trigger while a run is live gets 409.
func (h *OptimizationHandler) TriggerRun(c *gin.Context) {
	run, err := h.sched.RunDailyOptimization(c.Request.Context(), types.RunTriggerManual)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}

// GET /api/optimization/runs
func (h *OptimizationHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}

// GET /api/optimization/runs/:id
func (h *OptimizationHandler) GetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	run, err := h.runs.GetByID(c.Request.Context(), runID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}
