package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/store"
	"github.com/pairreview/pairreview/pkg/errors"
)

// CommentHandler serves the user-comments CRUD surface for a local review
// session, including adopting an AI suggestion into a user comment.
type CommentHandler struct {
	store store.Store
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(s store.Store) *CommentHandler {
	return &CommentHandler{store: s}
}

type createCommentRequest struct {
	File        string `json:"file" binding:"required"`
	LineStart   *int   `json:"lineStart"`
	LineEnd     *int   `json:"lineEnd"`
	Side        string `json:"side"`
	IsFileLevel bool   `json:"isFileLevel"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Author      string `json:"author"`
}

// List handles GET /api/local/{reviewId}/user-comments.
func (h *CommentHandler) List(c *gin.Context) {
	reviewID, err := parseReviewID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	includeDismissed := c.Query("includeDismissed") == "true"

	comments, err := h.store.Comment().List(reviewID, includeDismissed)
	if err != nil {
		respondError(c, err)
		return
	}
	var userComments []model.Comment
	for _, comment := range comments {
		if comment.Source == model.CommentSourceUser {
			userComments = append(userComments, comment)
		}
	}
	c.JSON(http.StatusOK, gin.H{"comments": userComments})
}

// Create handles POST /api/local/{reviewId}/user-comments.
func (h *CommentHandler) Create(c *gin.Context) {
	reviewID, err := parseReviewID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("invalid comment body"))
		return
	}

	comment := &model.Comment{
		ReviewID:    reviewID,
		Author:      req.Author,
		File:        req.File,
		LineStart:   req.LineStart,
		LineEnd:     req.LineEnd,
		Side:        req.Side,
		IsFileLevel: req.IsFileLevel,
		Type:        req.Type,
		Title:       req.Title,
		Body:        req.Body,
	}
	if err := h.store.Comment().CreateUserComment(comment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": comment.ID})
}

type updateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// Update handles PUT /api/local/{reviewId}/user-comments/{commentId}.
func (h *CommentHandler) Update(c *gin.Context) {
	id, err := parseUintParam(c, "commentId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("body is required"))
		return
	}
	if err := h.store.Comment().UpdateBody(id, req.Body); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// Delete handles DELETE /api/local/{reviewId}/user-comments/{commentId}.
func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "commentId")
	if err != nil {
		respondError(c, err)
		return
	}
	dismissedSuggestionID, err := h.store.Comment().SoftDelete(id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"id": id}
	if dismissedSuggestionID != nil {
		resp["dismissedSuggestionId"] = *dismissedSuggestionID
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteAll handles DELETE /api/local/{reviewId}/user-comments (bulk clear).
func (h *CommentHandler) DeleteAll(c *gin.Context) {
	reviewID, err := parseReviewID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	dismissed, err := h.store.Comment().BulkSoftDeleteByReview(reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deletedCount":           len(dismissed),
		"dismissedSuggestionIds": dismissed,
	})
}

// Restore handles POST /api/local/{reviewId}/user-comments/{commentId}/restore.
func (h *CommentHandler) Restore(c *gin.Context) {
	id, err := parseUintParam(c, "commentId")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Comment().Restore(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

type adoptCommentRequest struct {
	Author string `json:"author" binding:"required"`
}

// Adopt handles POST /api/local/{reviewId}/suggestions/{suggestionId}/adopt.
func (h *CommentHandler) Adopt(c *gin.Context) {
	id, err := parseUintParam(c, "suggestionId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req adoptCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("author is required"))
		return
	}
	comment, err := h.store.Comment().Adopt(id, req.Author)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func parseReviewID(c *gin.Context) (uint, error) {
	return parseUintParam(c, "reviewId")
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, errors.ErrInvalidInput("invalid " + name)
	}
	return uint(v), nil
}
