package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Well-known kv keys.
const (
	KeyDashboardFilters = "dashboard_filters"
)

// KVRepository is a small key-value store for bulk configuration blobs.
type KVRepository struct {
	db *DB
}

// NewKVRepository creates the kv store.
func NewKVRepository(db *DB) *KVRepository {
	return &KVRepository{db: db}
}

// Set stores value under key, JSON-encoded.
func (r *KVRepository) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal kv %s: %w", key, err)
	}

	query := `
		INSERT INTO kv_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.Pool.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("set kv %s: %w", key, err)
	}
	return nil
}

// Get loads the value stored under key into dest. Returns ErrNotFound when
// the key has never been set.
func (r *KVRepository) Get(ctx context.Context, key string, dest interface{}) error {
	var data []byte
	err := r.db.Pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get kv %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal kv %s: %w", key, err)
	}
	return nil
}
