// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package outcomes

import (
	"context"
	"sort"
	"sync"

	"github.com/danielhkuo/crossroads/models"
)

// MemoryStore keeps outcomes in process memory.
type MemoryStore struct {
	mu sync.RWMutex

	outcomes map[int64]models.Outcome
	current  int64
}

func NewMemoryStore(seed ...models.Outcome) *MemoryStore {
	s := &MemoryStore{outcomes: make(map[int64]models.Outcome, len(seed))}
	for _, o := range seed {
		s.outcomes[o.ID] = cloneOutcome(o)
	}
	return s
}

func (s *MemoryStore) GetCurrentOutcome(_ context.Context) (models.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.outcomes[s.current]
	if !ok {
		return models.Outcome{}, ErrNotFound
	}
	return cloneOutcome(o), nil
}

func (s *MemoryStore) GetOutcome(_ context.Context, id int64) (models.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.outcomes[id]
	if !ok {
		return models.Outcome{}, ErrNotFound
	}
	return cloneOutcome(o), nil
}

func (s *MemoryStore) SetCurrentOutcome(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outcomes[id]; !ok {
		return ErrNotFound
	}
	s.current = id
	return nil
}

func (s *MemoryStore) ListOutcomes(_ context.Context) ([]models.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.Outcome, 0, len(s.outcomes))
	for _, o := range s.outcomes {
		list = append(list, cloneOutcome(o))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *MemoryStore) PutOutcome(_ context.Context, outcome models.Outcome) error {
	if err := outcome.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[outcome.ID] = cloneOutcome(outcome)
	return nil
}

// CurrentID returns the raw pointer value, 0 when unset.
func (s *MemoryStore) CurrentID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

var _ Store = (*MemoryStore)(nil)
