package repository

import (
	"context"
	"fmt"

	"github.com/cadugr/frotawatch/internal/models"
)

// TelemetryRepository holds the working set of tracker readings: one row per
// plate, the best km seen so far. Import batches accumulate into it; they
// never replace it.
type TelemetryRepository struct {
	db *DB
}

// NewTelemetryRepository creates the telemetry store.
func NewTelemetryRepository(db *DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// MergeBatch folds one file's readings into the working set atomically. An
// existing reading is only displaced by a non-null km strictly greater than
// the stored one, so the first reading wins ties regardless of batch order.
func (r *TelemetryRepository) MergeBatch(ctx context.Context, readings []models.TelemetryReading) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin merge telemetry: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO telemetry_readings (plate, source, current_km, file_timestamp)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (plate) DO UPDATE SET
			source = EXCLUDED.source,
			current_km = EXCLUDED.current_km,
			file_timestamp = EXCLUDED.file_timestamp
		WHERE EXCLUDED.current_km IS NOT NULL
		  AND (telemetry_readings.current_km IS NULL OR EXCLUDED.current_km > telemetry_readings.current_km)
	`
	for _, reading := range readings {
		if _, err := tx.Exec(ctx, query,
			reading.Plate,
			reading.Source,
			reading.CurrentKm,
			reading.FileTimestamp,
		); err != nil {
			return fmt.Errorf("merge telemetry reading %s: %w", reading.Plate, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit merge telemetry: %w", err)
	}
	return nil
}

// List returns the deduplicated working set.
func (r *TelemetryRepository) List(ctx context.Context) ([]models.TelemetryReading, error) {
	query := `
		SELECT plate, source, current_km, file_timestamp
		FROM telemetry_readings ORDER BY plate
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list telemetry: %w", err)
	}
	defer rows.Close()

	var readings []models.TelemetryReading
	for rows.Next() {
		var reading models.TelemetryReading
		if err := rows.Scan(
			&reading.Plate,
			&reading.Source,
			&reading.CurrentKm,
			&reading.FileTimestamp,
		); err != nil {
			return nil, fmt.Errorf("scan telemetry reading: %w", err)
		}
		readings = append(readings, reading)
	}

	return readings, nil
}
