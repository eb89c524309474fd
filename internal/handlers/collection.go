// internal/handlers/collection.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/middleware"
	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/repository"
	"github.com/centmarde/Eco-Barangay/internal/services"
)

type CollectionHandler struct {
	collections *services.CollectionService
}

func NewCollectionHandler(collections *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collections: collections}
}

type CreateCollectionRequest struct {
	Address     string `json:"address" binding:"required,min=5,max=300"`
	Purok       string `json:"purok" binding:"omitempty,max=100"`
	GarbageType string `json:"garbage_type" binding:"required,garbagetype"`
	Notes       string `json:"notes" binding:"omitempty,max=1000"`
	Hazardous   bool   `json:"hazardous"`
}

type UpdateCollectionRequest struct {
	Address     *string `json:"address" binding:"omitempty,min=5,max=300"`
	Purok       *string `json:"purok" binding:"omitempty,max=100"`
	GarbageType *string `json:"garbage_type" binding:"omitempty,garbagetype"`
	Notes       *string `json:"notes" binding:"omitempty,max=1000"`
	Hazardous   *bool   `json:"hazardous"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_progress completed cancelled"`
}

type AssignCollectorRequest struct {
	CollectorID string `json:"collector_id" binding:"required"`
}

func (h *CollectionHandler) Create(c *gin.Context) {
	var req CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	collection, err := h.collections.Create(c.Request.Context(), userID, services.CreateCollectionInput{
		Address:     req.Address,
		Purok:       req.Purok,
		GarbageType: req.GarbageType,
		Notes:       req.Notes,
		Hazardous:   req.Hazardous,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, collection)
}

func (h *CollectionHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	collection, err := h.collections.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

func (h *CollectionHandler) List(c *gin.Context) {
	if term := c.Query("search"); term != "" {
		rows, err := h.collections.SearchByAddress(c.Request.Context(), term)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"collections": rows, "count": len(rows)})
		return
	}

	status := models.CollectionStatus(c.Query("status"))
	garbageType := c.Query("garbage_type")
	rows, err := h.collections.List(c.Request.Context(), status, garbageType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": rows, "count": len(rows)})
}

// ListMine returns the caller's own requests, as requester or collector.
func (h *CollectionHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var (
		rows []models.CollectionWithUsers
		err  error
	)
	switch c.Query("as") {
	case "collector":
		rows, err = h.collections.ListByCollector(c.Request.Context(), userID)
	case "requester":
		rows, err = h.collections.ListByRequester(c.Request.Context(), userID)
	default:
		rows, err = h.collections.ListByUser(c.Request.Context(), userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": rows, "count": len(rows)})
}

func (h *CollectionHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	collection, err := h.collections.Update(c.Request.Context(), id, repository.CollectionUpdate{
		Address:     req.Address,
		Purok:       req.Purok,
		GarbageType: req.GarbageType,
		Notes:       req.Notes,
		Hazardous:   req.Hazardous,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

func (h *CollectionHandler) UpdateStatus(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := middleware.UserIDFromContext(c)
	role, _ := middleware.RoleFromContext(c)

	collection, err := h.collections.UpdateStatus(c.Request.Context(), id, models.CollectionStatus(req.Status), userID, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

func (h *CollectionHandler) AssignCollector(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignCollectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	collectorID, err := primitive.ObjectIDFromHex(req.CollectorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collector id"})
		return
	}

	userID, _ := middleware.UserIDFromContext(c)
	collection, err := h.collections.AssignCollector(c.Request.Context(), id, collectorID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.collections.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pickup request deleted"})
}

// GarbageTypes lists the accepted e-waste categories.
func (h *CollectionHandler) GarbageTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"garbage_types": models.GarbageTypes})
}
