package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	logbook "aura-panel/internal/logbook/domain"
)

// Repository stores log records in postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a postgres-backed log repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// EnsureSchema creates the system_logs table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("logbook repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS system_logs (
	id BIGSERIAL PRIMARY KEY,
	level TEXT NOT NULL,
	source TEXT,
	category TEXT,
	message TEXT NOT NULL,
	data JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return err
}

// Append inserts a record and fills in its assigned id.
func (r *Repository) Append(ctx context.Context, record *logbook.Record) error {
	if r == nil || r.db == nil {
		return errors.New("logbook repo: nil db")
	}
	if err := record.Normalize(time.Now()); err != nil {
		return err
	}
	var data any
	if len(record.Data) > 0 {
		data = []byte(record.Data)
	}
	row := r.db.QueryRowContext(ctx, `
INSERT INTO system_logs (level, source, category, message, data, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id`,
		record.Level, nullable(record.Source), nullable(record.Category), record.Message, data, record.CreatedAt)
	return row.Scan(&record.ID)
}

// ListRecent returns up to limit records, most recent first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]logbook.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("logbook repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, level, COALESCE(source,''), COALESCE(category,''), message, COALESCE(data,'null'), created_at
FROM system_logs
ORDER BY created_at DESC, id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []logbook.Record
	for rows.Next() {
		var record logbook.Record
		var data []byte
		if err := rows.Scan(&record.ID, &record.Level, &record.Source, &record.Category, &record.Message, &data, &record.CreatedAt); err != nil {
			return nil, err
		}
		if len(data) > 0 && string(data) != "null" {
			record.Data = data
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// CountByCategory returns counts per category since the given time.
func (r *Repository) CountByCategory(ctx context.Context, since time.Time) (map[string]int, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("logbook repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT COALESCE(category,''), COUNT(*)
FROM system_logs
WHERE created_at >= $1
GROUP BY 1`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
