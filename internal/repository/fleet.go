package repository

import (
	"context"
	"fmt"

	"github.com/cadugr/frotawatch/internal/models"
)

// FleetRepository stores the base fleet registry. The registry has
// replace-all semantics: each panel import swaps the whole set in one
// transaction.
type FleetRepository struct {
	db *DB
}

// NewFleetRepository creates the fleet registry store.
func NewFleetRepository(db *DB) *FleetRepository {
	return &FleetRepository{db: db}
}

// ReplaceAll swaps the registry for the given records atomically. The
// position column preserves the import file's row order, which the
// consolidation output follows.
func (r *FleetRepository) ReplaceAll(ctx context.Context, vehicles []models.VehicleBase) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace fleet: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM fleet_vehicles`); err != nil {
		return fmt.Errorf("clear fleet: %w", err)
	}

	query := `
		INSERT INTO fleet_vehicles (plate, model, km_at_last_service, last_service_date, km_from_panel, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, v := range vehicles {
		if _, err := tx.Exec(ctx, query,
			v.Plate,
			v.Model,
			v.KmAtLastService,
			v.LastServiceDate,
			v.KmFromPanel,
			i,
		); err != nil {
			return fmt.Errorf("insert fleet vehicle %s: %w", v.Plate, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace fleet: %w", err)
	}
	return nil
}

// List returns the registry in import order.
func (r *FleetRepository) List(ctx context.Context) ([]models.VehicleBase, error) {
	query := `
		SELECT plate, model, km_at_last_service, last_service_date, km_from_panel
		FROM fleet_vehicles ORDER BY position
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list fleet: %w", err)
	}
	defer rows.Close()

	var vehicles []models.VehicleBase
	for rows.Next() {
		var v models.VehicleBase
		if err := rows.Scan(
			&v.Plate,
			&v.Model,
			&v.KmAtLastService,
			&v.LastServiceDate,
			&v.KmFromPanel,
		); err != nil {
			return nil, fmt.Errorf("scan fleet vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	return vehicles, nil
}

// Count returns the registry size.
func (r *FleetRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM fleet_vehicles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count fleet: %w", err)
	}
	return count, nil
}
