// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pairreview/pairreview/internal/localreview"
	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/orchestrator"
	"github.com/pairreview/pairreview/internal/store"
	"github.com/pairreview/pairreview/pkg/errors"
)

// LocalHandler serves the local working-tree review session lifecycle
// described in SPEC_FULL.md section 6.1: start, list, diff, refresh,
// staleness check, and analysis trigger/cancel/status.
type LocalHandler struct {
	store        store.Store
	manager      *localreview.Manager
	orchestrator *orchestrator.Orchestrator
}

// NewLocalHandler creates a LocalHandler.
func NewLocalHandler(s store.Store, m *localreview.Manager, o *orchestrator.Orchestrator) *LocalHandler {
	return &LocalHandler{store: s, manager: m, orchestrator: o}
}

type startLocalRequest struct {
	Path string `json:"path" binding:"required"`
}

// Start handles POST /api/local/start.
func (h *LocalHandler) Start(c *gin.Context) {
	var req startLocalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("path is required"))
		return
	}

	if info, err := os.Stat(req.Path); err != nil || !info.IsDir() {
		respondError(c, errors.ErrInvalidInput("path does not exist or is not a directory"))
		return
	}

	review, err := h.manager.Start(c.Request.Context(), req.Path)
	if err != nil {
		respondError(c, err)
		return
	}

	repository, branch := h.manager.RepositoryInfo(c.Request.Context(), review)
	diff, err := h.manager.GetDiff(review)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"sessionId":  review.ID,
		"reviewUrl":  localReviewURL(review.ID),
		"repository": repository,
		"branch":     branch,
		"stats":      diff.Stats,
	})
}

// ListSessions handles GET /api/local/sessions.
func (h *LocalHandler) ListSessions(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	var cursor time.Time
	if before := c.Query("before"); before != "" {
		parsed, err := time.Parse(time.RFC3339, before)
		if err != nil {
			respondError(c, errors.ErrInvalidInput("before must be an RFC3339 timestamp"))
			return
		}
		cursor = parsed
	}

	reviews, err := h.store.Review().ListLocalPaged(cursor, limit+1)
	if err != nil {
		respondError(c, err)
		return
	}

	hasMore := len(reviews) > limit
	if hasMore {
		reviews = reviews[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"sessions": reviews,
		"hasMore":  hasMore,
	})
}

// Get handles GET /api/local/{reviewId}.
func (h *LocalHandler) Get(c *gin.Context) {
	review, err := h.loadReview(c)
	if err != nil {
		respondError(c, err)
		return
	}
	repository, branch := h.manager.RepositoryInfo(c.Request.Context(), review)
	c.JSON(http.StatusOK, gin.H{
		"id":           review.ID,
		"name":         review.Name,
		"repository":   repository,
		"branch":       branch,
		"localPath":    review.LocalPath,
		"localHeadSha": review.LocalHeadSHA,
		"status":       review.Status,
		"createdAt":    review.CreatedAt,
		"updatedAt":    review.UpdatedAt,
	})
}

// Diff handles GET /api/local/{reviewId}/diff.
func (h *LocalHandler) Diff(c *gin.Context) {
	review, err := h.loadReview(c)
	if err != nil {
		respondError(c, err)
		return
	}
	diff, err := h.manager.GetDiff(review)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"diff":            diff.Text,
		"stats":           diff.Stats,
		"generated_files": []string{},
	})
}

// Refresh handles POST /api/local/{reviewId}/refresh.
func (h *LocalHandler) Refresh(c *gin.Context) {
	review, err := h.loadReview(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.manager.Refresh(c.Request.Context(), review)
	if err != nil {
		respondError(c, err)
		return
	}

	if !result.SessionChanged {
		diff, err := h.manager.GetDiff(review)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"stats":          diff.Stats,
			"sessionChanged": false,
		})
		return
	}

	diff, err := h.manager.GetDiff(result.NewReview)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":           diff.Stats,
		"sessionChanged":  true,
		"newSessionId":    result.NewReview.ID,
		"originalHeadSha": result.OriginalHeadSHA,
		"newHeadSha":      result.NewHeadSHA,
	})
}

// CheckStale handles GET /api/local/{reviewId}/check-stale.
func (h *LocalHandler) CheckStale(c *gin.Context) {
	review, err := h.loadReview(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result := h.manager.StalenessCheck(c.Request.Context(), review)
	resp := gin.H{"isStale": result.IsStale}
	if result.Error != "" {
		resp["error"] = result.Error
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel handles POST /api/local/{reviewId}/analyze/cancel.
func (h *LocalHandler) Cancel(c *gin.Context) {
	review, err := h.loadReview(c)
	if err != nil {
		respondError(c, err)
		return
	}
	run, err := h.store.AnalysisRun().GetLatest(review.ID)
	if err != nil || run == nil || run.Status != model.RunStatusRunning {
		c.JSON(http.StatusOK, gin.H{"cancelled": false})
		return
	}
	cancelled := h.orchestrator.Cancel(run.ID)
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled, "runId": run.ID})
}

// AnalysisStatus handles GET /api/local/{reviewId}/analysis-status.
func (h *LocalHandler) AnalysisStatus(c *gin.Context) {
	review, err := h.loadReview(c)
	if err != nil {
		respondError(c, err)
		return
	}
	run, err := h.store.AnalysisRun().GetLatest(review.ID)
	if err != nil || run == nil || run.Status != model.RunStatusRunning {
		c.JSON(http.StatusOK, gin.H{"running": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"running":    true,
		"analysisId": run.ID,
		"status": gin.H{
			"isCouncil":  run.ConfigType == model.RunConfigTypeCouncil,
			"configType": run.ConfigType,
		},
	})
}

// Suggestions handles GET /api/local/{reviewId}/suggestions.
func (h *LocalHandler) Suggestions(c *gin.Context) {
	review, err := h.loadReview(c)
	if err != nil {
		respondError(c, err)
		return
	}
	comments, err := h.store.Comment().List(review.ID, true)
	if err != nil {
		respondError(c, err)
		return
	}

	runID := c.Query("runId")
	var suggestions []model.Comment
	for _, comment := range comments {
		if comment.Source != model.CommentSourceAI {
			continue
		}
		if runID != "" && (comment.AIRunID == nil || *comment.AIRunID != runID) {
			continue
		}
		suggestions = append(suggestions, comment)
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// HasAISuggestions handles GET /api/local/{reviewId}/has-ai-suggestions.
func (h *LocalHandler) HasAISuggestions(c *gin.Context) {
	review, err := h.loadReview(c)
	if err != nil {
		respondError(c, err)
		return
	}
	runID := c.Query("runId")

	run, runErr := h.store.AnalysisRun().GetLatest(review.ID)
	analysisHasRun := runErr == nil && run != nil

	comments, err := h.store.Comment().List(review.ID, false)
	if err != nil {
		respondError(c, err)
		return
	}

	count := 0
	for _, comment := range comments {
		if comment.Source != model.CommentSourceAI {
			continue
		}
		if runID != "" && (comment.AIRunID == nil || *comment.AIRunID != runID) {
			continue
		}
		count++
	}

	summary := ""
	if run != nil && run.Summary != nil {
		summary = *run.Summary
	}

	c.JSON(http.StatusOK, gin.H{
		"analysisHasRun": analysisHasRun,
		"hasSuggestions": count > 0,
		"summary":        summary,
		"stats": gin.H{
			"totalSuggestions": count,
		},
	})
}

// loadReview resolves the {reviewId} path parameter to a model.Review.
func (h *LocalHandler) loadReview(c *gin.Context) (*model.Review, error) {
	id, err := strconv.ParseUint(c.Param("reviewId"), 10, 64)
	if err != nil {
		return nil, errors.ErrInvalidInput("invalid review id")
	}
	review, err := h.store.Review().GetByID(uint(id))
	if err != nil {
		return nil, errors.ErrNotFound("review")
	}
	return review, nil
}

func localReviewURL(reviewID uint) string {
	return "/local/" + strconv.FormatUint(uint64(reviewID), 10)
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// respondError renders err as the standard {error, code, message} error
// body; it does not record err on the gin context (no c.Error call).
// Handlers use this directly instead of routing every error through
// c.Error + middleware to keep the status code decision local to the
// handler that knows the operation.
func respondError(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr.Message, "code": appErr.Code, "message": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": errors.ErrCodeInternal, "message": err.Error()})
}
