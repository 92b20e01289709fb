package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/store"
	"github.com/pairreview/pairreview/pkg/errors"
)

// ContextFileHandler serves CRUD for user-pinned context file ranges
// attached to a local review session.
type ContextFileHandler struct {
	store store.Store
}

// NewContextFileHandler creates a ContextFileHandler.
func NewContextFileHandler(s store.Store) *ContextFileHandler {
	return &ContextFileHandler{store: s}
}

// List handles GET /api/local/{reviewId}/context-files.
func (h *ContextFileHandler) List(c *gin.Context) {
	reviewID, err := parseReviewID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	files, err := h.store.ContextFile().ListByReview(reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contextFiles": files})
}

type createContextFileRequest struct {
	File      string  `json:"file" binding:"required"`
	LineStart int     `json:"lineStart"`
	LineEnd   int     `json:"lineEnd"`
	Label     *string `json:"label"`
}

// Create handles POST /api/local/{reviewId}/context-files.
func (h *ContextFileHandler) Create(c *gin.Context) {
	reviewID, err := parseReviewID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req createContextFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("file is required"))
		return
	}
	contextFile := &model.ContextFile{
		ReviewID:  reviewID,
		File:      req.File,
		LineStart: req.LineStart,
		LineEnd:   req.LineEnd,
		Label:     req.Label,
	}
	if err := h.store.ContextFile().Add(contextFile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contextFile)
}

type updateContextFileRequest struct {
	LineStart int `json:"lineStart" binding:"required"`
	LineEnd   int `json:"lineEnd" binding:"required"`
}

// Update handles PUT /api/local/{reviewId}/context-files/{id}.
func (h *ContextFileHandler) Update(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req updateContextFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("lineStart and lineEnd are required"))
		return
	}
	if err := h.store.ContextFile().UpdateRange(id, req.LineStart, req.LineEnd); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// Delete handles DELETE /api/local/{reviewId}/context-files/{id}.
func (h *ContextFileHandler) Delete(c *gin.Context) {
	reviewID, err := parseReviewID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.ContextFile().Remove(reviewID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeleteAll handles DELETE /api/local/{reviewId}/context-files.
func (h *ContextFileHandler) DeleteAll(c *gin.Context) {
	reviewID, err := parseReviewID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.ContextFile().RemoveAllByReview(reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
