package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ImportStatus of a single attempted file.
type ImportStatus string

const (
	ImportSuccess ImportStatus = "success"
	ImportError   ImportStatus = "error"
)

// Details holds per-file parsing notes, stored as JSONB.
type Details []string

// Value implements driver.Valuer.
func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal(Details{})
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *Details) Scan(value interface{}) error {
	if value == nil {
		*d = Details{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan details: unsupported type %T", value)
	}
	return json.Unmarshal(raw, d)
}

// ImportLog records the outcome of one attempted file import.
type ImportLog struct {
	ID           string       `json:"id" db:"id"`
	Source       string       `json:"source" db:"source"`
	Filename     string       `json:"filename" db:"filename"`
	Timestamp    time.Time    `json:"timestamp" db:"timestamp"`
	RowsRead     int          `json:"rows_read" db:"rows_read"`
	Status       ImportStatus `json:"status" db:"status"`
	ErrorMessage string       `json:"error_message,omitempty" db:"error_message"`
	Details      Details      `json:"details,omitempty" db:"details"`
}
