package models

import "time"

// DisplayStatus is what the operator sees: either a raw MaintenanceStatus or
// a workflow stage label.
type DisplayStatus string

// Stage display labels.
const (
	DisplayToSchedule DisplayStatus = "AGENDAR REVISÃO"
	DisplayScheduled  DisplayStatus = "AGENDADO"
	DisplayDueToday   DisplayStatus = "REVISÃO HOJE"
	DisplayInShop     DisplayStatus = "EM OFICINA"
	DisplayDone       DisplayStatus = "CONCLUÍDO"
)

// TaskRef is the slice of a schedule task the dashboard needs.
type TaskRef struct {
	ID            string    `json:"id"`
	Stage         Stage     `json:"stage"`
	UpdatedAt     time.Time `json:"updated_at"`
	ScheduledDate string    `json:"scheduled_date,omitempty"`
	ScheduledTime string    `json:"scheduled_time,omitempty"`
}

// EnrichedRow is a Consolidated record overlaid with the plate's most
// recently updated schedule task, if any. Derived per query.
type EnrichedRow struct {
	Consolidated
	Task          *TaskRef      `json:"task,omitempty"`
	DisplayStatus DisplayStatus `json:"display_status"`
}
