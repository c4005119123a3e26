package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/ports/driven"
)

// Ensure ResultStore implements the interface.
var _ driven.ResultStore = (*ResultStore)(nil)

// ResultStore is an in-memory implementation of driven.ResultStore.
// Results are stored by pointer; callers must not mutate them after saving.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]*domain.RunResult
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string]*domain.RunResult),
	}
}

// Save stores a run result.
func (s *ResultStore) Save(_ context.Context, result *domain.RunResult) error {
	if result == nil || result.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ID] = result
	return nil
}

// Get retrieves a run by ID.
func (s *ResultStore) Get(_ context.Context, id string) (*domain.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// Latest returns the most recently created run.
func (s *ResultStore) Latest(_ context.Context) (*domain.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sorted := s.sorted()
	if len(sorted) == 0 {
		return nil, domain.ErrNoRuns
	}
	return sorted[0], nil
}

// List returns run listings, newest first.
func (s *ResultStore) List(_ context.Context) ([]domain.RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sorted := s.sorted()
	out := make([]domain.RunInfo, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, r.Info())
	}
	return out, nil
}

// sorted returns results newest first; ties order by ID. Callers hold the lock.
func (s *ResultStore) sorted() []*domain.RunResult {
	out := make([]*domain.RunResult, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
