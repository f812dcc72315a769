// Package storage provides session snapshot store implementations.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

// Compile-time interface check.
var _ domain.SessionStore = (*MemoryStore)(nil)

// MemoryStore keeps the latest snapshot of each session in memory for the
// lifetime of the process. Safe for concurrent access.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.Snapshot
	log       *logger.Logger
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]*domain.Snapshot),
		log:       log,
	}
}

// Save stores a copy of the snapshot, replacing the previous one.
func (s *MemoryStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("saving session %s (recipe=%s, state=%s, step=%d)", snap.ID, snap.RecipeName, snap.State, snap.StepIndex)
	cp := *snap
	s.snapshots[snap.ID] = &cp
	return nil
}

// Load retrieves the latest snapshot of a session.
func (s *MemoryStore) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		s.log.Debug("session not found: %s", id)
		return nil, domain.ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.snapshots, id)
	s.log.Debug("deleted session %s", id)
	return nil
}

// ListOpen returns sessions not yet in a terminal state, oldest first.
func (s *MemoryStore) ListOpen(ctx context.Context) ([]*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Snapshot
	for _, snap := range s.snapshots {
		if !snap.State.Terminal() {
			cp := *snap
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	s.log.Debug("listing open sessions, count=%d", len(out))
	return out, nil
}
