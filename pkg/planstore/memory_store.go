package planstore

import (
	"context"
	"sync"

	"github.com/cheatday/planner/pkg/models"
)

// MemoryStore holds the document in memory. Used in tests and when the
// server runs without a storage backend configured.
type MemoryStore struct {
	mu  sync.RWMutex
	set *models.PlanSet
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*models.PlanSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return nil, nil
	}
	cp := *s.set
	return &cp, nil
}

func (s *MemoryStore) Save(_ context.Context, set models.PlanSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = &set
	return nil
}
