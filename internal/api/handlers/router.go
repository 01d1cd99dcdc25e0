package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the API surface.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// fleet registry
		api.GET("/fleet", h.ListFleet)

		// spreadsheet imports
		api.POST("/imports/panel", h.ImportPanel)
		api.POST("/imports/trackers", h.ImportTrackers)
		api.GET("/imports/logs", h.ListImportLogs)

		// dashboard
		api.GET("/dashboard", h.GetDashboard)
		api.GET("/dashboard/stats", h.GetStats)
		api.GET("/dashboard/filters", h.GetFilters)
		api.PUT("/dashboard/filters", h.UpdateFilters)
		api.POST("/dashboard/sort/:key", h.ToggleSort)
		api.POST("/dashboard/reprocess", h.Reprocess)
		api.GET("/dashboard/export", h.ExportDashboard)

		// maintenance scheduling board
		api.GET("/schedules", h.ListSchedules)
		api.POST("/schedules/bulk", h.BulkCreateSchedules)
		api.GET("/schedules/export", h.ExportSchedules)
		api.GET("/schedules/:id", h.GetSchedule)
		api.PATCH("/schedules/:id", h.UpdateSchedule)
		api.DELETE("/schedules/:id", h.DeleteSchedule)
		api.POST("/schedules/:id/move", h.MoveSchedule)
		api.POST("/schedules/:id/conclude", h.ConcludeSchedule)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// health
	r.GET("/health", h.HealthCheck)
}
