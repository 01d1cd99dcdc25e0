package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cadugr/frotawatch/internal/models"
)

// GetDashboard returns the enriched fleet view with the stored filters
// applied.
func (h *Handler) GetDashboard(c *gin.Context) {
	rows, err := h.dashboard.Rows(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "total": len(rows)})
}

// GetStats returns the KPI counters over the unfiltered view.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetFilters returns the stored filter configuration.
func (h *Handler) GetFilters(c *gin.Context) {
	cfg, err := h.dashboard.Filters(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load filters", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load filters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}

// UpdateFilters replaces the stored filter configuration.
func (h *Handler) UpdateFilters(c *gin.Context) {
	var cfg models.DashboardFilters
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter payload"})
		return
	}

	if err := h.dashboard.SaveFilters(c.Request.Context(), cfg); err != nil {
		h.logger.Error("Failed to save filters", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save filters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}

// ToggleSort applies a column-header click: same key flips direction, a new
// key starts descending.
func (h *Handler) ToggleSort(c *gin.Context) {
	cfg, err := h.dashboard.ToggleSort(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.logger.Error("Failed to toggle sort", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle sort"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}

// Reprocess re-runs the consolidation pipeline.
func (h *Handler) Reprocess(c *gin.Context) {
	n, err := h.dashboard.Reprocess(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to reprocess", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reprocess"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dados reprocessados",
		"rows":    n,
	})
}
