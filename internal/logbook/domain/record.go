package logbook

import (
	"encoding/json"
	"errors"
	"time"
)

// Log levels as stored. Free-form strings on the wire, defaulted here.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// ErrEmptyMessage rejects records without a message.
var ErrEmptyMessage = errors.New("logbook: message is required")

// Record is one append-only system log entry. Records are never mutated
// after creation; they feed the dashboard log view, the CSV/XLSX export and
// the analytics summary.
type Record struct {
	ID        int64           `json:"id"`
	Level     string          `json:"level"`
	Source    string          `json:"source,omitempty"`
	Category  string          `json:"category,omitempty"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Normalize applies defaults and validates the record before persistence.
func (r *Record) Normalize(now time.Time) error {
	if r == nil || r.Message == "" {
		return ErrEmptyMessage
	}
	if r.Level == "" {
		r.Level = LevelInfo
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now.UTC()
	}
	return nil
}
