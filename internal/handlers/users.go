// internal/handlers/users.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/centmarde/Eco-Barangay/internal/middleware"
	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/services"
)

type UserHandler struct {
	users     *services.UserService
	directory *services.DirectoryService
}

func NewUserHandler(users *services.UserService, directory *services.DirectoryService) *UserHandler {
	return &UserHandler{users: users, directory: directory}
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=RESIDENT COLLECTOR OFFICIAL ADMIN"`
}

type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

func (h *UserHandler) List(c *gin.Context) {
	role := models.UserRole(c.Query("role"))
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	users, total, err := h.users.List(c.Request.Context(), role, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Collectors lists active collector accounts for assignment pickers.
func (h *UserHandler) Collectors(c *gin.Context) {
	entries, err := h.directory.ListByRole(c.Request.Context(), models.RoleCollector)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collectors": entries, "count": len(entries)})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.users.UpdateRole(c.Request.Context(), id, models.UserRole(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetBlocked(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req SetBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	callerID, _ := middleware.UserIDFromContext(c)
	if req.Blocked && callerID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot block your own account"})
		return
	}

	if err := h.users.SetBlocked(c.Request.Context(), id, req.Blocked); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User block state updated"})
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	callerID, _ := middleware.UserIDFromContext(c)
	if callerID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
