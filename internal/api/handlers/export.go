package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cadugr/frotawatch/internal/export"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func sendDownload(c *gin.Context, format export.Format, filename string, body []byte) {
	contentType := contentTypeCSV
	if format == export.FormatXLSX {
		contentType = contentTypeXLSX
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}

// ExportDashboard downloads the current filtered view as CSV or XLSX.
// GET /api/dashboard/export?format=csv|xlsx
func (h *Handler) ExportDashboard(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.dashboard.Rows(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	var buf bytes.Buffer
	if format == export.FormatXLSX {
		err = export.WriteConsolidatedXLSX(&buf, rows)
	} else {
		err = export.WriteConsolidatedCSV(&buf, rows)
	}
	if err != nil {
		h.logger.Error("Failed to render export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render export"})
		return
	}

	sendDownload(c, format, export.Filename("Consolidado", format, time.Now()), buf.Bytes())
}

// ExportSchedules downloads the scheduling board as CSV or XLSX.
// GET /api/schedules/export?format=csv|xlsx
func (h *Handler) ExportSchedules(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := h.scheduler.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list schedules for export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	var buf bytes.Buffer
	if format == export.FormatXLSX {
		err = export.WriteTasksXLSX(&buf, tasks)
	} else {
		err = export.WriteTasksCSV(&buf, tasks)
	}
	if err != nil {
		h.logger.Error("Failed to render export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render export"})
		return
	}

	sendDownload(c, format, export.Filename("Agendamentos", format, time.Now()), buf.Bytes())
}
