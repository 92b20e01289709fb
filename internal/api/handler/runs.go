package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/store"
)

// RunHandler serves read access to persisted analysis run records.
type RunHandler struct {
	store store.Store
}

// NewRunHandler creates a RunHandler.
func NewRunHandler(s store.Store) *RunHandler {
	return &RunHandler{store: s}
}

// Get handles GET /api/local/{reviewId}/runs/{runId}. The run's children
// (per-voice sub-runs of a council or advanced run) are attached inline.
func (h *RunHandler) Get(c *gin.Context) {
	runID := c.Param("runId")
	run, err := h.store.AnalysisRun().GetByID(runID)
	if err != nil {
		respondError(c, err)
		return
	}
	children, err := h.store.AnalysisRun().ListChildren(runID)
	if err != nil {
		respondError(c, err)
		return
	}
	run.Children = children
	c.JSON(http.StatusOK, run)
}

// Logs handles GET /api/local/{reviewId}/runs/{runId}/logs, returning the
// log lines the orchestrator captured while driving that run's voices.
func (h *RunHandler) Logs(c *gin.Context) {
	runID := c.Param("runId")
	logs, err := h.store.RunLog().GetByScope(model.RunLogScopeRun, runID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
