// Package scheduling owns the maintenance workflow: Kanban tasks, their
// append-only history, the stage machine and the time-driven promotion of
// scheduled tasks into the due-today column.
package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cadugr/frotawatch/internal/models"
)

// History action tags.
const (
	ActionCreateFromAlert = "CREATE_FROM_ALERT"
	ActionUpdate          = "UPDATE"
	ActionConclude        = "CONCLUDE"
	actionMovePrefix      = "MOVE:"
	actionAutoMovePrefix  = "AUTO_MOVE:"
)

// TaskStore is the persistence surface the service needs. Implemented by
// repository.ScheduleRepository.
type TaskStore interface {
	List(ctx context.Context) ([]models.ScheduleTask, error)
	ListByStage(ctx context.Context, stage models.Stage) ([]models.ScheduleTask, error)
	Get(ctx context.Context, id string) (*models.ScheduleTask, error)
	Add(ctx context.Context, t *models.ScheduleTask) error
	Update(ctx context.Context, t *models.ScheduleTask) error
	Remove(ctx context.Context, id string) error
}

// Notifier receives a hint whenever the task set changes. Observers re-read;
// the notification carries no payload.
type Notifier interface {
	SchedulesChanged()
}

// TaskDefaults are operator-supplied values applied to every task of a bulk
// creation. An explicit priority overrides the status-based suggestion.
type TaskDefaults struct {
	Priority      models.Priority `json:"priority,omitempty"`
	ScheduledDate string          `json:"scheduled_date,omitempty"`
	ScheduledTime string          `json:"scheduled_time,omitempty"`
	Workshop      string          `json:"workshop,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// BulkCreateResult reports a partially-successful bulk creation: conflicts
// are an outcome, not an error.
type BulkCreateResult struct {
	CreatedIDs []string `json:"created_ids"`
	Conflicts  []string `json:"conflicts"`
}

// TaskPatch carries an edit to the non-stage fields of a task. Nil fields
// are left untouched.
type TaskPatch struct {
	ScheduledDate *string          `json:"scheduled_date,omitempty"`
	ScheduledTime *string          `json:"scheduled_time,omitempty"`
	ExpectedDate  *string          `json:"expected_date,omitempty"`
	ExpectedTime  *string          `json:"expected_time,omitempty"`
	Workshop      *string          `json:"workshop,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	Priority      *models.Priority `json:"priority,omitempty"`
}

// apply mutates t and returns the changed fields for the history event.
func (p TaskPatch) apply(t *models.ScheduleTask) map[string]interface{} {
	meta := make(map[string]interface{})
	if p.ScheduledDate != nil {
		t.ScheduledDate = *p.ScheduledDate
		meta["scheduled_date"] = *p.ScheduledDate
	}
	if p.ScheduledTime != nil {
		t.ScheduledTime = *p.ScheduledTime
		meta["scheduled_time"] = *p.ScheduledTime
	}
	if p.ExpectedDate != nil {
		t.ExpectedDate = *p.ExpectedDate
		meta["expected_date"] = *p.ExpectedDate
	}
	if p.ExpectedTime != nil {
		t.ExpectedTime = *p.ExpectedTime
		meta["expected_time"] = *p.ExpectedTime
	}
	if p.Workshop != nil {
		t.Workshop = *p.Workshop
		meta["workshop"] = *p.Workshop
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
		meta["notes"] = *p.Notes
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
		meta["priority"] = string(*p.Priority)
	}
	return meta
}

// Service is the scheduling state store front. All mutations append exactly
// one history event, bump UpdatedAt and publish a change notification.
type Service struct {
	logger   *zap.Logger
	store    TaskStore
	clock    Clock
	interval time.Duration

	mu          sync.Mutex
	stopCh      chan struct{}
	wg          sync.WaitGroup
	running     bool
	subscribers []chan struct{}
	notifiers   []Notifier
}

// NewService creates the scheduling service. interval is the auto-promotion
// sweep period.
func NewService(logger *zap.Logger, store TaskStore, clock Clock, interval time.Duration) *Service {
	if clock == nil {
		clock = RealClock
	}
	return &Service{
		logger:   logger,
		store:    store,
		clock:    clock,
		interval: interval,
	}
}

// AddNotifier registers an external change listener (e.g. the websocket hub).
func (s *Service) AddNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifiers = append(s.notifiers, n)
}

// Subscribe returns a channel that receives a hint after every mutation.
// Delivery is at-least-once per change; slow subscribers may see hints
// coalesced.
func (s *Service) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *Service) notifyChanged() {
	s.mu.Lock()
	subscribers := s.subscribers
	notifiers := s.notifiers
	s.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- struct{}{}:
		default:
			// Subscriber already has a pending hint.
		}
	}
	for _, n := range notifiers {
		n.SchedulesChanged()
	}
}

// List returns all tasks.
func (s *Service) List(ctx context.Context) ([]models.ScheduleTask, error) {
	return s.store.List(ctx)
}

// ListByStage returns the tasks in one Kanban column.
func (s *Service) ListByStage(ctx context.Context, stage models.Stage) ([]models.ScheduleTask, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
	return s.store.ListByStage(ctx, stage)
}

// Get fetches one task.
func (s *Service) Get(ctx context.Context, id string) (*models.ScheduleTask, error) {
	return s.store.Get(ctx, id)
}

// BulkCreateFromAlerts creates one AGENDAR task per vehicle, snapshotting
// the consolidation fields. A plate that already has an active task is
// recorded as a conflict and skipped; the rest of the batch proceeds.
func (s *Service) BulkCreateFromAlerts(ctx context.Context, vehicles []models.Consolidated, defaults TaskDefaults) (*BulkCreateResult, error) {
	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	activePlates := make(map[string]bool)
	for _, t := range existing {
		if t.Active() {
			activePlates[t.Plate] = true
		}
	}

	result := &BulkCreateResult{CreatedIDs: []string{}, Conflicts: []string{}}
	for _, v := range vehicles {
		if activePlates[v.Plate] {
			result.Conflicts = append(result.Conflicts, v.Plate)
			continue
		}

		priority := models.SuggestedPriority(v.Status)
		if defaults.Priority != "" {
			priority = defaults.Priority
		}

		kmAtLast := v.KmAtLastService
		now := s.clock.Now()
		task := &models.ScheduleTask{
			ID:               uuid.NewString(),
			Plate:            v.Plate,
			Model:            v.Model,
			CurrentKm:        v.CurrentKm,
			KmAtLastService:  &kmAtLast,
			KmSinceService:   v.KmSinceService,
			SourceUsed:       v.SourceUsed,
			StatusAtCreation: v.Status,
			Stage:            models.StageToSchedule,
			ScheduledDate:    defaults.ScheduledDate,
			ScheduledTime:    defaults.ScheduledTime,
			Workshop:         defaults.Workshop,
			Notes:            defaults.Notes,
			Priority:         priority,
			CreatedAt:        now,
			UpdatedAt:        now,
			History: models.History{{
				At:     now,
				Action: ActionCreateFromAlert,
				Meta:   map[string]interface{}{"from": "dashboard"},
			}},
		}

		if err := s.store.Add(ctx, task); err != nil {
			return nil, fmt.Errorf("add task for %s: %w", v.Plate, err)
		}
		activePlates[v.Plate] = true
		result.CreatedIDs = append(result.CreatedIDs, task.ID)
	}

	s.logger.Info("Bulk created schedule tasks",
		zap.Int("created", len(result.CreatedIDs)),
		zap.Int("conflicts", len(result.Conflicts)),
	)
	if len(result.CreatedIDs) > 0 {
		s.notifyChanged()
	}
	return result, nil
}

// Update edits the non-stage fields of a task.
func (s *Service) Update(ctx context.Context, id string, patch TaskPatch) (*models.ScheduleTask, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := patch.apply(task)
	s.appendEvent(task, ActionUpdate, meta)

	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}
	s.notifyChanged()
	return task, nil
}

// Move drags a task to another Kanban column.
func (s *Service) Move(ctx context.Context, id string, to models.Stage) (*models.ScheduleTask, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := task.Stage
	if err := validateMove(from, to); err != nil {
		return nil, err
	}

	task.Stage = to
	if to == models.StageDone && task.ClosedAt == nil {
		closed := s.clock.Now()
		task.ClosedAt = &closed
	}
	s.appendEvent(task, fmt.Sprintf("%s%s->%s", actionMovePrefix, from, to), nil)

	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task moved",
		zap.String("task_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	s.notifyChanged()
	return task, nil
}

// Conclude moves a task to CONCLUIDO. ClosedAt is set exactly once; a
// conclude on an already-closed task keeps the original timestamp.
func (s *Service) Conclude(ctx context.Context, id string) (*models.ScheduleTask, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Stage == models.StageDone {
		return task, nil
	}

	from := task.Stage
	task.Stage = models.StageDone
	if task.ClosedAt == nil {
		closed := s.clock.Now()
		task.ClosedAt = &closed
	}
	s.appendEvent(task, ActionConclude, map[string]interface{}{"from": string(from)})

	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}
	s.notifyChanged()
	return task, nil
}

// Remove deletes a task.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	s.notifyChanged()
	return nil
}

// appendEvent records one history entry and bumps UpdatedAt. History grows
// monotonically; it is never truncated or rewritten.
func (s *Service) appendEvent(task *models.ScheduleTask, action string, meta map[string]interface{}) {
	now := s.clock.Now()
	task.History = append(task.History, models.HistoryEvent{At: now, Action: action, Meta: meta})
	task.UpdatedAt = now
}

// Start launches the auto-promotion sweep loop.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.stopCh = make(chan struct{})
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.sweepLoop(ctx)
	s.logger.Info("Scheduling sweep started", zap.Duration("interval", s.interval))
}

// Stop halts the sweep loop and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("Scheduling sweep stopped")
}

func (s *Service) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-s.clock.After(s.interval):
			if err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("Sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce promotes every AGENDADO task whose scheduled date is today to
// HOJE. This is the only time-driven stage transition.
func (s *Service) SweepOnce(ctx context.Context) error {
	scheduled, err := s.store.ListByStage(ctx, models.StageScheduled)
	if err != nil {
		return fmt.Errorf("list scheduled tasks: %w", err)
	}

	today := s.clock.Now().Format("2006-01-02")
	promoted := 0
	for i := range scheduled {
		task := &scheduled[i]
		if task.ScheduledDate != today {
			continue
		}

		task.Stage = models.StageDueToday
		s.appendEvent(task, fmt.Sprintf("%s%s->%s", actionAutoMovePrefix, models.StageScheduled, models.StageDueToday), nil)

		if err := s.store.Update(ctx, task); err != nil {
			return fmt.Errorf("promote task %s: %w", task.ID, err)
		}
		promoted++
	}

	if promoted > 0 {
		s.logger.Info("Auto-promoted scheduled tasks", zap.Int("count", promoted))
		s.notifyChanged()
	}
	return nil
}
