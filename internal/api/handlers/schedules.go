package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cadugr/frotawatch/internal/models"
	"github.com/cadugr/frotawatch/internal/repository"
	"github.com/cadugr/frotawatch/internal/scheduling"
)

// ListSchedules returns all tasks, optionally narrowed to one board column.
func (h *Handler) ListSchedules(c *gin.Context) {
	ctx := c.Request.Context()

	if stage := c.Query("stage"); stage != "" {
		s := models.Stage(stage)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown stage"})
			return
		}
		tasks, err := h.scheduler.ListByStage(ctx, s)
		if err != nil {
			h.logger.Error("Failed to list schedules", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list schedules"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": tasks})
		return
	}

	tasks, err := h.scheduler.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list schedules", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list schedules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

// GetSchedule returns one task with its full history.
func (h *Handler) GetSchedule(c *gin.Context) {
	task, err := h.scheduler.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": task})
}

type bulkCreateRequest struct {
	Plates   []string                `json:"plates" binding:"required"`
	Defaults scheduling.TaskDefaults `json:"defaults"`
}

// BulkCreateSchedules creates tasks for the selected dashboard rows. Plates
// that already have an open task come back as conflicts, not errors.
func (h *Handler) BulkCreateSchedules(c *gin.Context) {
	var req bulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bulk create payload"})
		return
	}

	ctx := c.Request.Context()
	vehicles, err := h.dashboard.Snapshot(ctx, req.Plates)
	if err != nil {
		h.logger.Error("Failed to snapshot vehicles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedules"})
		return
	}

	result, err := h.scheduler.BulkCreateFromAlerts(ctx, vehicles, req.Defaults)
	if err != nil {
		h.logger.Error("Failed to create schedules", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedules"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// UpdateSchedule applies a partial edit without changing the stage.
func (h *Handler) UpdateSchedule(c *gin.Context) {
	var patch scheduling.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patch payload"})
		return
	}

	task, err := h.scheduler.Update(c.Request.Context(), c.Param("id"), patch)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to update schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": task})
}

// DeleteSchedule removes a task entirely.
func (h *Handler) DeleteSchedule(c *gin.Context) {
	err := h.scheduler.Remove(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Agendamento removido"})
}

type moveRequest struct {
	Stage models.Stage `json:"stage" binding:"required"`
}

// MoveSchedule drags a card to another board column.
func (h *Handler) MoveSchedule(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid move payload"})
		return
	}

	task, err := h.scheduler.Move(c.Request.Context(), c.Param("id"), req.Stage)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if errors.Is(err, scheduling.ErrInvalidMove) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("Failed to move schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": task})
}

// ConcludeSchedule closes a task. Concluding twice is a no-op.
func (h *Handler) ConcludeSchedule(c *gin.Context) {
	task, err := h.scheduler.Conclude(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to conclude schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to conclude schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": task})
}
