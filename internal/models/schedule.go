package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Stage is a schedule task's position in the maintenance Kanban.
type Stage string

const (
	StageToSchedule Stage = "AGENDAR"
	StageScheduled  Stage = "AGENDADO"
	StageDueToday   Stage = "HOJE"
	StageInShop     Stage = "OFICINA"
	StageDone       Stage = "CONCLUIDO"
)

// AllStages lists the Kanban columns in workflow order.
var AllStages = []Stage{StageToSchedule, StageScheduled, StageDueToday, StageInShop, StageDone}

// Valid reports whether s is a known Kanban stage.
func (s Stage) Valid() bool {
	switch s {
	case StageToSchedule, StageScheduled, StageDueToday, StageInShop, StageDone:
		return true
	}
	return false
}

// Priority of a schedule task.
type Priority string

const (
	PriorityHigh   Priority = "ALTA"
	PriorityMedium Priority = "MEDIA"
	PriorityLow    Priority = "BAIXA"
)

// SuggestedPriority maps a vehicle's KM status to a default priority at
// bulk-creation time.
func SuggestedPriority(status MaintenanceStatus) Priority {
	switch status {
	case StatusExceeded:
		return PriorityHigh
	case StatusApproaching:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// HistoryEvent is one entry of a task's append-only audit trail.
type HistoryEvent struct {
	At     time.Time              `json:"at"`
	Action string                 `json:"action"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// History is stored as a JSONB column.
type History []HistoryEvent

// Value implements driver.Valuer for database storage.
func (h History) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal(History{})
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner.
func (h *History) Scan(value interface{}) error {
	if value == nil {
		*h = History{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan history: unsupported type %T", value)
	}
	return json.Unmarshal(raw, h)
}

// ScheduleTask is one maintenance workflow instance for a vehicle. It carries
// a snapshot of the consolidation fields taken when the task was created.
type ScheduleTask struct {
	ID    string `json:"id" db:"id"`
	Plate string `json:"plate" db:"plate"`

	// Consolidation snapshot at creation time.
	Model            string            `json:"model" db:"model"`
	CurrentKm        *int              `json:"current_km" db:"current_km"`
	KmAtLastService  *int              `json:"km_at_last_service" db:"km_at_last_service"`
	KmSinceService   *int              `json:"km_since_service" db:"km_since_service"`
	SourceUsed       string            `json:"source_used,omitempty" db:"source_used"`
	StatusAtCreation MaintenanceStatus `json:"status_at_creation" db:"status_at_creation"`

	Stage         Stage      `json:"stage" db:"stage"`
	ScheduledDate string     `json:"scheduled_date,omitempty" db:"scheduled_date"` // yyyy-MM-dd
	ScheduledTime string     `json:"scheduled_time,omitempty" db:"scheduled_time"` // HH:mm
	ExpectedDate  string     `json:"expected_date,omitempty" db:"expected_date"`
	ExpectedTime  string     `json:"expected_time,omitempty" db:"expected_time"`
	Workshop      string     `json:"workshop,omitempty" db:"workshop"`
	Notes         string     `json:"notes,omitempty" db:"notes"`
	Priority      Priority   `json:"priority,omitempty" db:"priority"`
	ClosedAt      *time.Time `json:"closed_at,omitempty" db:"closed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	History   History   `json:"history" db:"history"`
}

// Active reports whether the task still occupies its plate's single active
// workflow slot.
func (t *ScheduleTask) Active() bool {
	return t.Stage != StageDone
}
