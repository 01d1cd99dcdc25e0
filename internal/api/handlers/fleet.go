package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListFleet returns the registered fleet in import order.
func (h *Handler) ListFleet(c *gin.Context) {
	vehicles, err := h.fleetRepo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list fleet", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list fleet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": vehicles, "total": len(vehicles)})
}
