// internal/handlers/feedback.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/middleware"
	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/services"
)

type FeedbackHandler struct {
	feedbacks *services.FeedbackService
}

func NewFeedbackHandler(feedbacks *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbacks: feedbacks}
}

type CreateFeedbackRequest struct {
	Title        string `json:"title" binding:"omitempty,max=200"`
	Rate         int    `json:"rate" binding:"required,min=1,max=5"`
	Description  string `json:"description" binding:"omitempty,max=1000"`
	CollectionID string `json:"collection_id" binding:"omitempty"`
}

type UpdateFeedbackStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new reviewed resolved"`
}

func (h *FeedbackHandler) Create(c *gin.Context) {
	var req CreateFeedbackRequest
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

	input := services.CreateFeedbackInput{
		Title:       req.Title,
		Rate:        req.Rate,
		Description: req.Description,
	}
	if req.CollectionID != "" {
		collectionID, err := primitive.ObjectIDFromHex(req.CollectionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection id"})
			return
		}
		input.CollectionID = &collectionID
	}

	feedback, err := h.feedbacks.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

func (h *FeedbackHandler) List(c *gin.Context) {
	rows, err := h.feedbacks.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedbacks": rows, "count": len(rows)})
}

func (h *FeedbackHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rows, err := h.feedbacks.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedbacks": rows, "count": len(rows)})
}

func (h *FeedbackHandler) ListByCollection(c *gin.Context) {
	collectionID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.feedbacks.ListByCollection(c.Request.Context(), collectionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedbacks": rows, "count": len(rows)})
}

func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateFeedbackStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	feedback, err := h.feedbacks.UpdateStatus(c.Request.Context(), id, models.FeedbackStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.feedbacks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback deleted"})
}
