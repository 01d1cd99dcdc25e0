// Package service orchestrates the dashboard pipeline: load the registry and
// telemetry, consolidate, enrich with schedule state, then filter and sort.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cadugr/frotawatch/internal/consolidate"
	"github.com/cadugr/frotawatch/internal/enrich"
	"github.com/cadugr/frotawatch/internal/filter"
	"github.com/cadugr/frotawatch/internal/models"
	"github.com/cadugr/frotawatch/internal/repository"
)

// FleetSource lists the registered fleet in import order.
type FleetSource interface {
	List(ctx context.Context) ([]models.VehicleBase, error)
	Count(ctx context.Context) (int, error)
}

// TelemetrySource lists the deduplicated tracker readings.
type TelemetrySource interface {
	List(ctx context.Context) ([]models.TelemetryReading, error)
}

// TaskSource lists all schedule tasks.
type TaskSource interface {
	List(ctx context.Context) ([]models.ScheduleTask, error)
}

// FilterStore persists the dashboard filter configuration between sessions.
type FilterStore interface {
	Set(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// Stats are the dashboard KPI counters.
type Stats struct {
	Total      int `json:"total"`
	Exceeded   int `json:"exceeded"`
	ToSchedule int `json:"to_schedule"`
	Scheduled  int `json:"scheduled"`
	DueToday   int `json:"due_today"`
	InShop     int `json:"in_shop"`
	NoData     int `json:"no_data"`
}

// Dashboard computes the enriched, filtered fleet view. It holds no cache:
// every read recomputes from the stores so schedule moves and imports are
// visible immediately.
type Dashboard struct {
	logger     *zap.Logger
	fleet      FleetSource
	telemetry  TelemetrySource
	tasks      TaskSource
	filters    FilterStore
	doneWindow time.Duration
	now        func() time.Time
}

// NewDashboard wires the pipeline. doneWindow controls how long a concluded
// task keeps showing CONCLUÍDO before the row falls back to its raw status.
func NewDashboard(logger *zap.Logger, fleet FleetSource, telemetry TelemetrySource, tasks TaskSource, filters FilterStore, doneWindow time.Duration) *Dashboard {
	if doneWindow <= 0 {
		doneWindow = enrich.DefaultDoneWindow
	}
	return &Dashboard{
		logger:     logger,
		fleet:      fleet,
		telemetry:  telemetry,
		tasks:      tasks,
		filters:    filters,
		doneWindow: doneWindow,
		now:        time.Now,
	}
}

// consolidated runs the reconciliation half of the pipeline.
func (d *Dashboard) consolidated(ctx context.Context) ([]models.Consolidated, error) {
	base, err := d.fleet.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fleet: %w", err)
	}
	readings, err := d.telemetry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load telemetry: %w", err)
	}
	return consolidate.Consolidate(base, readings), nil
}

// Snapshot returns the consolidated rows for the requested plates, in the
// order requested. Plates absent from the registry are skipped.
func (d *Dashboard) Snapshot(ctx context.Context, plates []string) ([]models.Consolidated, error) {
	rows, err := d.consolidated(ctx)
	if err != nil {
		return nil, err
	}
	byPlate := make(map[string]models.Consolidated, len(rows))
	for _, r := range rows {
		byPlate[r.Plate] = r
	}
	out := make([]models.Consolidated, 0, len(plates))
	for _, p := range plates {
		if r, ok := byPlate[p]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Rows returns the enriched fleet view with the stored filters applied.
func (d *Dashboard) Rows(ctx context.Context) ([]models.EnrichedRow, error) {
	cfg, err := d.Filters(ctx)
	if err != nil {
		return nil, err
	}
	return d.RowsWith(ctx, cfg)
}

// RowsWith returns the enriched fleet view filtered by an explicit config.
func (d *Dashboard) RowsWith(ctx context.Context, cfg models.DashboardFilters) ([]models.EnrichedRow, error) {
	rows, err := d.consolidated(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := d.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	enriched := enrich.Enrich(rows, tasks, d.now(), d.doneWindow)
	return filter.Apply(enriched, cfg), nil
}

// Stats counts rows per display status over the unfiltered view, so the KPI
// cards stay stable while the user narrows the table.
func (d *Dashboard) Stats(ctx context.Context) (Stats, error) {
	rows, err := d.consolidated(ctx)
	if err != nil {
		return Stats{}, err
	}
	tasks, err := d.tasks.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load tasks: %w", err)
	}
	enriched := enrich.Enrich(rows, tasks, d.now(), d.doneWindow)

	s := Stats{Total: len(enriched)}
	for _, r := range enriched {
		switch r.DisplayStatus {
		case models.DisplayToSchedule:
			s.ToSchedule++
		case models.DisplayScheduled:
			s.Scheduled++
		case models.DisplayDueToday:
			s.DueToday++
		case models.DisplayInShop:
			s.InShop++
		default:
			switch models.MaintenanceStatus(r.DisplayStatus) {
			case models.StatusExceeded:
				s.Exceeded++
			case models.StatusNoData:
				s.NoData++
			}
		}
	}
	return s, nil
}

// Filters returns the stored filter configuration, falling back to the
// defaults when nothing was saved yet.
func (d *Dashboard) Filters(ctx context.Context) (models.DashboardFilters, error) {
	var cfg models.DashboardFilters
	err := d.filters.Get(ctx, repository.KeyDashboardFilters, &cfg)
	if errors.Is(err, repository.ErrNotFound) {
		return models.DefaultDashboardFilters(), nil
	}
	if err != nil {
		return models.DashboardFilters{}, fmt.Errorf("load filters: %w", err)
	}
	return cfg, nil
}

// SaveFilters persists the filter configuration. Toggling sort direction on
// a repeated sort key is the caller's concern; what arrives here is stored
// as-is.
func (d *Dashboard) SaveFilters(ctx context.Context, cfg models.DashboardFilters) error {
	if err := d.filters.Set(ctx, repository.KeyDashboardFilters, cfg); err != nil {
		return fmt.Errorf("save filters: %w", err)
	}
	d.logger.Debug("dashboard filters saved",
		zap.String("sort_key", cfg.SortKey),
		zap.String("sort_dir", string(cfg.SortDir)))
	return nil
}

// ToggleSort applies the column-header click behavior: same key flips the
// direction, a new key starts descending. The updated config is persisted
// and returned.
func (d *Dashboard) ToggleSort(ctx context.Context, key string) (models.DashboardFilters, error) {
	cfg, err := d.Filters(ctx)
	if err != nil {
		return models.DashboardFilters{}, err
	}
	if cfg.SortKey == key {
		if cfg.SortDir == models.SortAsc {
			cfg.SortDir = models.SortDesc
		} else {
			cfg.SortDir = models.SortAsc
		}
	} else {
		cfg.SortKey = key
		cfg.SortDir = models.SortDesc
	}
	if err := d.SaveFilters(ctx, cfg); err != nil {
		return models.DashboardFilters{}, err
	}
	return cfg, nil
}

// Reprocess re-runs the pipeline end to end and reports how many rows it
// produced. The pipeline is stateless, so this is mostly a health probe for
// the stores plus a convenient hook after bulk data fixes.
func (d *Dashboard) Reprocess(ctx context.Context) (int, error) {
	rows, err := d.consolidated(ctx)
	if err != nil {
		return 0, err
	}
	d.logger.Info("dashboard reprocessed", zap.Int("rows", len(rows)))
	return len(rows), nil
}

// FleetCount reports how many vehicles the registry currently holds.
func (d *Dashboard) FleetCount(ctx context.Context) (int, error) {
	n, err := d.fleet.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count fleet: %w", err)
	}
	return n, nil
}
