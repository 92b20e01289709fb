package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/store"
	"github.com/pairreview/pairreview/pkg/errors"
	"github.com/pairreview/pairreview/pkg/idgen"
)

// CouncilHandler serves CRUD for named, reusable voice plans ("councils"),
// listed most-recently-used first.
type CouncilHandler struct {
	store store.Store
}

// NewCouncilHandler creates a CouncilHandler.
func NewCouncilHandler(s store.Store) *CouncilHandler {
	return &CouncilHandler{store: s}
}

// List handles GET /api/local/{reviewId}/councils (and GET /api/councils).
func (h *CouncilHandler) List(c *gin.Context) {
	councils, err := h.store.Council().List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"councils": councils})
}

type councilRequest struct {
	Name   string            `json:"name" binding:"required"`
	Type   model.CouncilType `json:"type" binding:"required"`
	Config model.JSONMap     `json:"config" binding:"required"`
}

// Create handles POST /api/councils.
func (h *CouncilHandler) Create(c *gin.Context) {
	var req councilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("name, type, and config are required"))
		return
	}
	council := &model.Council{
		ID:     idgen.NewID(),
		Name:   req.Name,
		Type:   req.Type,
		Config: req.Config,
	}
	if err := h.store.Council().Create(council); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, council)
}

// Update handles PUT /api/councils/{id}.
func (h *CouncilHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req councilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("name, type, and config are required"))
		return
	}
	council := &model.Council{ID: id, Name: req.Name, Type: req.Type, Config: req.Config}
	if err := h.store.Council().Update(council); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, council)
}

// Delete handles DELETE /api/councils/{id}.
func (h *CouncilHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Council().Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
