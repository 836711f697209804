package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	logbook "aura-panel/internal/logbook/domain"
)

// Repository keeps log records in memory. Used for tests and for running
// the panel without a database.
type Repository struct {
	mu      sync.Mutex
	nextID  int64
	records []logbook.Record
}

// NewRepository constructs an empty in-memory log repository.
func NewRepository() *Repository {
	return &Repository{nextID: 1}
}

// Append stores a record.
func (r *Repository) Append(_ context.Context, record *logbook.Record) error {
	if err := record.Normalize(time.Now()); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = r.nextID
	r.nextID++
	r.records = append(r.records, *record)
	return nil
}

// ListRecent returns up to limit records, most recent first.
func (r *Repository) ListRecent(_ context.Context, limit int) ([]logbook.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]logbook.Record, len(r.records))
	copy(records, r.records)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// CountByCategory returns counts per category since the given time.
func (r *Repository) CountByCategory(_ context.Context, since time.Time) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, record := range r.records {
		if record.CreatedAt.Before(since) {
			continue
		}
		counts[record.Category]++
	}
	return counts, nil
}
