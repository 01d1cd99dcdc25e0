package models

import "time"

// TelemetryReading is one odometer reading from a tracker feed. Batches
// accumulate across imports; the working set keeps a single reading per
// plate, the one with the highest non-null CurrentKm.
type TelemetryReading struct {
	Source        TrackerSource `json:"source" db:"source"`
	Plate         string        `json:"plate" db:"plate"`
	CurrentKm     *int          `json:"current_km" db:"current_km"`
	FileTimestamp time.Time     `json:"file_timestamp" db:"file_timestamp"`
}
