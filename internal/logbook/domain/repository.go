package logbook

import (
	"context"
	"time"
)

// Repository persists and queries log records.
type Repository interface {
	// Append stores a record and fills in its assigned ID.
	Append(ctx context.Context, record *Record) error
	// ListRecent returns up to limit records, most recent first.
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	// CountByCategory returns record counts per category since the given
	// time. Records without a category are grouped under "".
	CountByCategory(ctx context.Context, since time.Time) (map[string]int, error)
}
