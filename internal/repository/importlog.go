package repository

import (
	"context"
	"fmt"

	"github.com/cadugr/frotawatch/internal/models"
)

// ImportLogRepository keeps one entry per attempted file import.
type ImportLogRepository struct {
	db *DB
}

// NewImportLogRepository creates the import log store.
func NewImportLogRepository(db *DB) *ImportLogRepository {
	return &ImportLogRepository{db: db}
}

// Add appends one log entry.
func (r *ImportLogRepository) Add(ctx context.Context, log *models.ImportLog) error {
	query := `
		INSERT INTO import_logs (id, source, filename, timestamp, rows_read, status, error_message, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		log.ID,
		log.Source,
		log.Filename,
		log.Timestamp,
		log.RowsRead,
		log.Status,
		log.ErrorMessage,
		log.Details,
	)
	if err != nil {
		return fmt.Errorf("insert import log: %w", err)
	}
	return nil
}

// List returns entries newest first, capped at limit (0 means no cap).
func (r *ImportLogRepository) List(ctx context.Context, limit int) ([]models.ImportLog, error) {
	query := `
		SELECT id, source, filename, timestamp, rows_read, status, error_message, details
		FROM import_logs ORDER BY timestamp DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list import logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ImportLog
	for rows.Next() {
		var log models.ImportLog
		if err := rows.Scan(
			&log.ID,
			&log.Source,
			&log.Filename,
			&log.Timestamp,
			&log.RowsRead,
			&log.Status,
			&log.ErrorMessage,
			&log.Details,
		); err != nil {
			return nil, fmt.Errorf("scan import log: %w", err)
		}
		logs = append(logs, log)
	}

	return logs, nil
}
