// internal/handlers/purok.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/services"
)

type PurokHandler struct {
	puroks *services.PurokService
}

func NewPurokHandler(puroks *services.PurokService) *PurokHandler {
	return &PurokHandler{puroks: puroks}
}

type CreatePurokRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

type UpdatePurokRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=100"`
	Notes *string `json:"notes" binding:"omitempty,max=500"`
}

type SetPurokStatusRequest struct {
	Status string  `json:"status" binding:"required,oneof=pending clean needs_pickup pickup_scheduled"`
	Notes  *string `json:"notes" binding:"omitempty,max=500"`
}

type LinkCollectionRequest struct {
	CollectionID string `json:"collection_id" binding:"required"`
}

func (h *PurokHandler) Create(c *gin.Context) {
	var req CreatePurokRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	purok, err := h.puroks.Create(c.Request.Context(), req.Name, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purok)
}

func (h *PurokHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	purok, err := h.puroks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purok)
}

func (h *PurokHandler) List(c *gin.Context) {
	puroks, err := h.puroks.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"puroks": puroks, "count": len(puroks)})
}

func (h *PurokHandler) LinkCollection(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req LinkCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	collectionID, err := primitive.ObjectIDFromHex(req.CollectionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection id"})
		return
	}

	purok, err := h.puroks.LinkCollection(c.Request.Context(), id, collectionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purok)
}

func (h *PurokHandler) SetStatus(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req SetPurokStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	purok, err := h.puroks.SetStatus(c.Request.Context(), id, models.PurokStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purok)
}

func (h *PurokHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePurokRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	purok, err := h.puroks.UpdateDetails(c.Request.Context(), id, req.Name, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purok)
}

func (h *PurokHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.puroks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purok deleted"})
}
