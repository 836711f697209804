package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	logbook "aura-panel/internal/logbook/domain"
)

func TestAppendAssignsIDsAndDefaults(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	record := logbook.Record{Message: "entry"}
	if err := repo.Append(ctx, &record); err != nil {
		t.Fatalf("append: %v", err)
	}
	if record.ID != 1 || record.Level != logbook.LevelInfo || record.CreatedAt.IsZero() {
		t.Fatalf("record = %+v", record)
	}

	second := logbook.Record{Message: "next"}
	if err := repo.Append(ctx, &second); err != nil {
		t.Fatalf("append: %v", err)
	}
	if second.ID != 2 {
		t.Fatalf("id = %d, want 2", second.ID)
	}
}

func TestAppendRejectsEmptyMessage(t *testing.T) {
	repo := NewRepository()
	record := logbook.Record{}
	if err := repo.Append(context.Background(), &record); !errors.Is(err, logbook.ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestCountByCategoryExcludesOlderRecords(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	old := logbook.Record{Category: "fire", Message: "old", CreatedAt: now.Add(-48 * time.Hour)}
	recent := logbook.Record{Category: "fire", Message: "recent", CreatedAt: now}
	other := logbook.Record{Category: "gas", Message: "recent", CreatedAt: now}
	for _, record := range []*logbook.Record{&old, &recent, &other} {
		if err := repo.Append(ctx, record); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	counts, err := repo.CountByCategory(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts["fire"] != 1 || counts["gas"] != 1 {
		t.Fatalf("counts = %+v", counts)
	}
}
