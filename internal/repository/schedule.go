package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cadugr/frotawatch/internal/models"
)

const taskColumns = `
	id, plate, model, current_km, km_at_last_service, km_since_service,
	source_used, status_at_creation, stage, scheduled_date, scheduled_time,
	expected_date, expected_time, workshop, notes, priority, closed_at,
	created_at, updated_at, history
`

// ScheduleRepository is the collection store for maintenance workflow tasks.
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates the schedule task store.
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func scanTask(row pgx.Row) (*models.ScheduleTask, error) {
	t := &models.ScheduleTask{}
	err := row.Scan(
		&t.ID,
		&t.Plate,
		&t.Model,
		&t.CurrentKm,
		&t.KmAtLastService,
		&t.KmSinceService,
		&t.SourceUsed,
		&t.StatusAtCreation,
		&t.Stage,
		&t.ScheduledDate,
		&t.ScheduledTime,
		&t.ExpectedDate,
		&t.ExpectedTime,
		&t.Workshop,
		&t.Notes,
		&t.Priority,
		&t.ClosedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.History,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns every task, oldest first.
func (r *ScheduleRepository) List(ctx context.Context) ([]models.ScheduleTask, error) {
	query := `SELECT ` + taskColumns + ` FROM schedule_tasks ORDER BY created_at`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.ScheduleTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}

	return tasks, nil
}

// ListByStage returns the tasks in one Kanban column, oldest first.
func (r *ScheduleRepository) ListByStage(ctx context.Context, stage models.Stage) ([]models.ScheduleTask, error) {
	query := `SELECT ` + taskColumns + ` FROM schedule_tasks WHERE stage = $1 ORDER BY created_at`
	rows, err := r.db.Pool.Query(ctx, query, stage)
	if err != nil {
		return nil, fmt.Errorf("list tasks by stage: %w", err)
	}
	defer rows.Close()

	var tasks []models.ScheduleTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}

	return tasks, nil
}

// Get fetches one task by id. Returns ErrNotFound when it does not exist.
func (r *ScheduleRepository) Get(ctx context.Context, id string) (*models.ScheduleTask, error) {
	query := `SELECT ` + taskColumns + ` FROM schedule_tasks WHERE id = $1`
	t, err := scanTask(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Add inserts a new task. A duplicate id is rejected with ErrDuplicateID.
func (r *ScheduleRepository) Add(ctx context.Context, t *models.ScheduleTask) error {
	query := `
		INSERT INTO schedule_tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		t.ID,
		t.Plate,
		t.Model,
		t.CurrentKm,
		t.KmAtLastService,
		t.KmSinceService,
		t.SourceUsed,
		t.StatusAtCreation,
		t.Stage,
		t.ScheduledDate,
		t.ScheduledTime,
		t.ExpectedDate,
		t.ExpectedTime,
		t.Workshop,
		t.Notes,
		t.Priority,
		t.ClosedAt,
		t.CreatedAt,
		t.UpdatedAt,
		t.History,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update persists a full task row. Returns ErrNotFound if the id is unknown;
// the store never silently no-ops.
func (r *ScheduleRepository) Update(ctx context.Context, t *models.ScheduleTask) error {
	query := `
		UPDATE schedule_tasks SET
			plate = $2, model = $3, current_km = $4, km_at_last_service = $5,
			km_since_service = $6, source_used = $7, status_at_creation = $8,
			stage = $9, scheduled_date = $10, scheduled_time = $11,
			expected_date = $12, expected_time = $13, workshop = $14,
			notes = $15, priority = $16, closed_at = $17, updated_at = $18,
			history = $19
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query,
		t.ID,
		t.Plate,
		t.Model,
		t.CurrentKm,
		t.KmAtLastService,
		t.KmSinceService,
		t.SourceUsed,
		t.StatusAtCreation,
		t.Stage,
		t.ScheduledDate,
		t.ScheduledTime,
		t.ExpectedDate,
		t.ExpectedTime,
		t.Workshop,
		t.Notes,
		t.Priority,
		t.ClosedAt,
		t.UpdatedAt,
		t.History,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes a task by id. Returns ErrNotFound if the id is unknown.
func (r *ScheduleRepository) Remove(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM schedule_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
