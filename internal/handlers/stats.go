// internal/handlers/stats.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/centmarde/Eco-Barangay/internal/middleware"
	"github.com/centmarde/Eco-Barangay/internal/services"
)

type StatsHandler struct {
	stats *services.StatsService
}

func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CollectorStats returns the caller's own pickup breakdown, or another
// collector's when an id parameter is present.
func (h *StatsHandler) CollectorStats(c *gin.Context) {
	if c.Param("id") != "" {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		stats, err := h.stats.CollectorStats(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
		return
	}

	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	stats, err := h.stats.CollectorStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) ReportAnalysis(c *gin.Context) {
	period := c.DefaultQuery("period", services.PeriodWeek)
	shares, err := h.stats.ReportAnalysis(c.Request.Context(), period)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "breakdown": shares})
}
