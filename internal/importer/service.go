package importer

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cadugr/frotawatch/internal/models"
)

// FleetStore receives the registry with replace-all semantics.
type FleetStore interface {
	ReplaceAll(ctx context.Context, vehicles []models.VehicleBase) error
}

// TelemetryStore accumulates tracker batches.
type TelemetryStore interface {
	MergeBatch(ctx context.Context, readings []models.TelemetryReading) error
}

// LogStore records one entry per attempted file.
type LogStore interface {
	Add(ctx context.Context, log *models.ImportLog) error
}

// Notifier is poked after data changes so dashboards re-read.
type Notifier interface {
	DataImported()
}

// File is one uploaded workbook.
type File struct {
	Name   string
	Reader io.Reader
}

// FileResult is the per-file outcome of a tracker batch import.
type FileResult struct {
	File    string   `json:"file"`
	Source  string   `json:"source,omitempty"`
	Success bool     `json:"success"`
	Count   int      `json:"count,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Service runs imports against the stores. Each file is atomic: a failure
// discards that file's rows without touching what other files contributed.
type Service struct {
	logger    *zap.Logger
	fleet     FleetStore
	telemetry TelemetryStore
	logs      LogStore
	notifiers []Notifier
}

// NewService creates the import service.
func NewService(logger *zap.Logger, fleet FleetStore, telemetry TelemetryStore, logs LogStore) *Service {
	return &Service{
		logger:    logger,
		fleet:     fleet,
		telemetry: telemetry,
		logs:      logs,
	}
}

// AddNotifier registers a change listener.
func (s *Service) AddNotifier(n Notifier) {
	s.notifiers = append(s.notifiers, n)
}

func (s *Service) notifyImported() {
	for _, n := range s.notifiers {
		n.DataImported()
	}
}

func (s *Service) addLog(ctx context.Context, log *models.ImportLog) {
	log.ID = uuid.NewString()
	log.Timestamp = time.Now()
	if err := s.logs.Add(ctx, log); err != nil {
		s.logger.Error("Failed to record import log", zap.Error(err), zap.String("file", log.Filename))
	}
}

// ImportPanel parses a registry workbook and replaces the fleet with it.
func (s *Service) ImportPanel(ctx context.Context, filename string, r io.Reader) (int, error) {
	vehicles, err := ParsePanel(r)
	if err != nil {
		s.addLog(ctx, &models.ImportLog{
			Source:       models.SourcePanel,
			Filename:     filename,
			Status:       models.ImportError,
			ErrorMessage: err.Error(),
		})
		return 0, err
	}

	if err := s.fleet.ReplaceAll(ctx, vehicles); err != nil {
		s.addLog(ctx, &models.ImportLog{
			Source:       models.SourcePanel,
			Filename:     filename,
			Status:       models.ImportError,
			ErrorMessage: err.Error(),
		})
		return 0, err
	}

	s.addLog(ctx, &models.ImportLog{
		Source:   models.SourcePanel,
		Filename: filename,
		RowsRead: len(vehicles),
		Status:   models.ImportSuccess,
	})
	s.logger.Info("Panel imported", zap.String("file", filename), zap.Int("vehicles", len(vehicles)))
	s.notifyImported()
	return len(vehicles), nil
}

// ImportTrackers processes a batch of tracker workbooks. A bad file is
// logged and skipped; the rest of the batch continues.
func (s *Service) ImportTrackers(ctx context.Context, files []File) []FileResult {
	results := make([]FileResult, 0, len(files))
	imported := false

	for _, file := range files {
		result := s.importTrackerFile(ctx, file)
		if result.Success {
			imported = true
		}
		results = append(results, result)
	}

	if imported {
		s.notifyImported()
	}
	return results
}

func (s *Service) importTrackerFile(ctx context.Context, file File) FileResult {
	source, err := DetectSource(file.Name)
	if err != nil {
		s.addLog(ctx, &models.ImportLog{
			Source:       models.SourceUnknown,
			Filename:     file.Name,
			Status:       models.ImportError,
			ErrorMessage: err.Error(),
		})
		return FileResult{File: file.Name, Error: err.Error()}
	}

	readings, details, err := ParseTracker(file.Reader, source, time.Now())
	if err != nil {
		s.addLog(ctx, &models.ImportLog{
			Source:       models.SourceUnknown,
			Filename:     file.Name,
			Status:       models.ImportError,
			ErrorMessage: err.Error(),
		})
		return FileResult{File: file.Name, Source: string(source), Error: err.Error()}
	}

	if err := s.telemetry.MergeBatch(ctx, readings); err != nil {
		s.addLog(ctx, &models.ImportLog{
			Source:       string(source),
			Filename:     file.Name,
			Status:       models.ImportError,
			ErrorMessage: err.Error(),
		})
		return FileResult{File: file.Name, Source: string(source), Error: err.Error()}
	}

	s.addLog(ctx, &models.ImportLog{
		Source:   string(source),
		Filename: file.Name,
		RowsRead: len(readings),
		Status:   models.ImportSuccess,
		Details:  details,
	})
	s.logger.Info("Tracker file imported",
		zap.String("file", file.Name),
		zap.String("source", string(source)),
		zap.Int("readings", len(readings)),
	)
	return FileResult{
		File:    file.Name,
		Source:  string(source),
		Success: true,
		Count:   len(readings),
		Details: details,
	}
}
