package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cadugr/frotawatch/internal/importer"
)

// ImportPanel replaces the fleet registry from an uploaded panel workbook.
// POST /api/imports/panel, multipart field "file".
func (h *Handler) ImportPanel(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing upload field 'file'"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read uploaded file"})
		return
	}
	defer f.Close()

	count, err := h.importSvc.ImportPanel(c.Request.Context(), fileHeader.Filename, f)
	if err != nil {
		h.logger.Warn("Panel import failed", zap.String("file", fileHeader.Filename), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Planilha do painel importada",
		"count":   count,
	})
}

// ImportTrackers merges one or more tracker workbooks. Each file succeeds or
// fails on its own; the response carries a result per file.
// POST /api/imports/trackers, multipart field "files" (repeatable).
func (h *Handler) ImportTrackers(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing upload field 'files'"})
		return
	}

	files := make([]importer.File, 0, len(headers))
	closers := make([]func() error, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read uploaded file " + fh.Filename})
			break
		}
		files = append(files, importer.File{Name: fh.Filename, Reader: f})
		closers = append(closers, f.Close)
	}
	defer func() {
		for _, close := range closers {
			_ = close()
		}
	}()
	if len(files) != len(headers) {
		return
	}

	results := h.importSvc.ImportTrackers(c.Request.Context(), files)
	c.JSON(http.StatusOK, gin.H{"data": results})
}

// ListImportLogs returns the most recent import attempts, newest first.
func (h *Handler) ListImportLogs(c *gin.Context) {
	limit := h.logLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	logs, err := h.logRepo.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list import logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list import logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
