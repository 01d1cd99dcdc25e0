package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors surfaced by the stores.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("duplicate id")
)

// DB wraps the pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New connects to the database.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate runs the schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCreateFleetVehicles,
		migrationCreateTelemetryReadings,
		migrationCreateScheduleTasks,
		migrationCreateImportLogs,
		migrationCreateKVStore,
	}

	for _, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

const migrationCreateFleetVehicles = `
CREATE TABLE IF NOT EXISTS fleet_vehicles (
    plate VARCHAR(16) PRIMARY KEY,
    model VARCHAR(255) NOT NULL DEFAULT '',
    km_at_last_service BIGINT NOT NULL,
    last_service_date VARCHAR(32) NOT NULL DEFAULT '',
    km_from_panel BIGINT,
    position INT NOT NULL DEFAULT 0
);
`

const migrationCreateTelemetryReadings = `
CREATE TABLE IF NOT EXISTS telemetry_readings (
    plate VARCHAR(16) PRIMARY KEY,
    source VARCHAR(32) NOT NULL,
    current_km BIGINT,
    file_timestamp TIMESTAMP WITH TIME ZONE NOT NULL
);
`

const migrationCreateScheduleTasks = `
CREATE TABLE IF NOT EXISTS schedule_tasks (
    id UUID PRIMARY KEY,
    plate VARCHAR(16) NOT NULL,
    model VARCHAR(255) NOT NULL DEFAULT '',
    current_km BIGINT,
    km_at_last_service BIGINT,
    km_since_service BIGINT,
    source_used VARCHAR(32) NOT NULL DEFAULT '',
    status_at_creation VARCHAR(32) NOT NULL,
    stage VARCHAR(16) NOT NULL,
    scheduled_date VARCHAR(10) NOT NULL DEFAULT '',
    scheduled_time VARCHAR(5) NOT NULL DEFAULT '',
    expected_date VARCHAR(10) NOT NULL DEFAULT '',
    expected_time VARCHAR(5) NOT NULL DEFAULT '',
    workshop VARCHAR(255) NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    priority VARCHAR(8) NOT NULL DEFAULT '',
    closed_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
    history JSONB NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_schedule_tasks_plate ON schedule_tasks(plate);
CREATE INDEX IF NOT EXISTS idx_schedule_tasks_stage ON schedule_tasks(stage);
`

const migrationCreateImportLogs = `
CREATE TABLE IF NOT EXISTS import_logs (
    id UUID PRIMARY KEY,
    source VARCHAR(32) NOT NULL,
    filename VARCHAR(512) NOT NULL,
    timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
    rows_read INT NOT NULL DEFAULT 0,
    status VARCHAR(16) NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    details JSONB NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_import_logs_timestamp ON import_logs(timestamp DESC);
`

const migrationCreateKVStore = `
CREATE TABLE IF NOT EXISTS kv_store (
    key VARCHAR(255) PRIMARY KEY,
    value JSONB NOT NULL
);
`
