package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/orchestrator"
	"github.com/pairreview/pairreview/internal/store"
	"github.com/pairreview/pairreview/pkg/errors"
	"github.com/pairreview/pairreview/pkg/idgen"
)

// ExternalHandler accepts analysis results produced outside the
// orchestrator (an editor plugin, a CI job) and records them exactly as if
// a provider adapter had produced them.
type ExternalHandler struct {
	store     store.Store
	publisher orchestrator.Publisher
}

// NewExternalHandler creates an ExternalHandler.
func NewExternalHandler(s store.Store, publisher orchestrator.Publisher) *ExternalHandler {
	return &ExternalHandler{store: s, publisher: publisher}
}

type externalSuggestion struct {
	File        string   `json:"file" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Line        *int     `json:"line"`
	LineStart   *int     `json:"line_start"`
	LineEnd     *int     `json:"line_end"`
	OldOrNew    string   `json:"old_or_new"`
	Reasoning   *string  `json:"reasoning"`
	Confidence  *float64 `json:"confidence"`
}

type externalResultsRequest struct {
	Path                 string               `json:"path"`
	HeadSHA              string               `json:"headSha"`
	Repo                 string               `json:"repo"`
	PRNumber             *int                 `json:"prNumber"`
	Provider             *string              `json:"provider"`
	Model                *string              `json:"model"`
	Summary              *string              `json:"summary"`
	Suggestions          []externalSuggestion `json:"suggestions"`
	FileLevelSuggestions []externalSuggestion `json:"fileLevelSuggestions"`
}

// Submit handles POST /api/analyses/results.
func (h *ExternalHandler) Submit(c *gin.Context) {
	var req externalResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("invalid request body"))
		return
	}

	review, err := h.resolveReview(req)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, s := range req.Suggestions {
		if s.LineStart == nil && s.Line == nil {
			respondError(c, errors.ErrInvalidInput("suggestion line_start or line is required"))
			return
		}
	}

	runID := idgen.NewRunID()
	now := time.Now().UTC()
	run := &model.AnalysisRun{
		ID:               runID,
		ReviewID:         review.ID,
		Provider:         req.Provider,
		Model:            req.Model,
		Status:           model.RunStatusCompleted,
		StartedAt:        now,
		CompletedAt:      &now,
		Summary:          req.Summary,
		HeadSHA:          review.LocalHeadSHA,
		ConfigType:       model.RunConfigTypeSingle,
		TotalSuggestions: len(req.Suggestions) + len(req.FileLevelSuggestions),
	}
	if err := h.store.AnalysisRun().Create(run); err != nil {
		respondError(c, err)
		return
	}

	raw := make([]store.RawSuggestion, 0, len(req.Suggestions)+len(req.FileLevelSuggestions))
	for _, s := range req.Suggestions {
		raw = append(raw, toRawSuggestion(s, false))
	}
	for _, s := range req.FileLevelSuggestions {
		raw = append(raw, toRawSuggestion(s, true))
	}
	if len(raw) > 0 {
		if err := h.store.Comment().BulkInsertSuggestions(runID, raw); err != nil {
			respondError(c, err)
			return
		}
	}

	if h.publisher != nil {
		h.publisher.Publish(orchestrator.ReviewTopic(review.ID), gin.H{
			"type":     "run-completed",
			"runId":    runID,
			"reviewId": review.ID,
			"source":   "external",
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"runId":            runID,
		"reviewId":         review.ID,
		"totalSuggestions": run.TotalSuggestions,
		"status":           "completed",
	})
}

func (h *ExternalHandler) resolveReview(req externalResultsRequest) (*model.Review, error) {
	if req.Path != "" || req.HeadSHA != "" {
		return h.store.Review().GetLocalByPathAndSHA(req.Path, req.HeadSHA)
	}
	if req.Repo != "" && req.PRNumber != nil {
		return h.store.Review().GetByPRAndRepository(req.Repo, *req.PRNumber)
	}
	return nil, errors.ErrInvalidInput("either (path, headSha) or (repo, prNumber) is required")
}

func toRawSuggestion(s externalSuggestion, fileLevel bool) store.RawSuggestion {
	line := s.LineStart
	if line == nil {
		line = s.Line
	}
	side := "RIGHT"
	if s.OldOrNew == "OLD" {
		side = "LEFT"
	}
	lineEnd := s.LineEnd
	if lineEnd == nil {
		lineEnd = line
	}
	if fileLevel {
		line = nil
		lineEnd = nil
	}
	return store.RawSuggestion{
		File:       s.File,
		Line:       line,
		LineEnd:    lineEnd,
		Side:       side,
		Type:       s.Type,
		Title:      s.Title,
		Body:       s.Description,
		Reasoning:  s.Reasoning,
		Confidence: s.Confidence,
		Level:      1,
		IsRaw:      false,
	}
}
