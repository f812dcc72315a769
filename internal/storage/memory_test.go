package storage

import (
	"context"
	"testing"
	"time"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

func TestMemoryStoreCRUD(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	snap := &domain.Snapshot{
		ID:         "test-session-1",
		RecipeName: "Mapo Tofu",
		State:      domain.StateCooking,
		StepIndex:  2,
		StepCount:  5,
		StartedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	// Save.
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	snap.StepIndex = 4

	// Load.
	loaded, err := store.Load(ctx, "test-session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != snap.ID || loaded.StepIndex != 2 {
		t.Fatalf("unexpected snapshot: %+v", loaded)
	}

	// Load nonexistent.
	_, err = store.Load(ctx, "nonexistent")
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Delete.
	if err := store.Delete(ctx, "test-session-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = store.Load(ctx, "test-session-1")
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Delete nonexistent.
	if err := store.Delete(ctx, "nonexistent"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListOpenFilters(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()
	base := time.Now()

	snaps := []*domain.Snapshot{
		{ID: "s1", State: domain.StateGrading, StartedAt: base.Add(2 * time.Second)},
		{ID: "s2", State: domain.StateIntro, StartedAt: base},
		{ID: "s3", State: domain.StateFailed, StartedAt: base},
		{ID: "s4", State: domain.StateClosed, StartedAt: base},
	}

	for _, s := range snaps {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("save %s: %v", s.ID, err)
		}
	}

	open, err := store.ListOpen(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open sessions, got %d", len(open))
	}
	if open[0].ID != "s2" || open[1].ID != "s1" {
		t.Fatalf("expected oldest first, got %s, %s", open[0].ID, open[1].ID)
	}
}
