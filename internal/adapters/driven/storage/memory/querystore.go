package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/ports/driven"
)

// Ensure QueryStore implements the interface.
var _ driven.QueryStore = (*QueryStore)(nil)

// QueryStore is an in-memory implementation of driven.QueryStore.
type QueryStore struct {
	mu      sync.RWMutex
	queries map[string]domain.TrackedQuery
}

// NewQueryStore creates a new in-memory query store.
func NewQueryStore() *QueryStore {
	return &QueryStore{
		queries: make(map[string]domain.TrackedQuery),
	}
}

// Save creates or updates a tracked query.
func (s *QueryStore) Save(_ context.Context, query domain.TrackedQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	query.OwnerDomains = append([]string(nil), query.OwnerDomains...)
	s.queries[query.ID] = query
	return nil
}

// Get retrieves a tracked query by ID.
func (s *QueryStore) Get(_ context.Context, id string) (*domain.TrackedQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.queries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &q, nil
}

// List returns all tracked queries ordered by ID.
func (s *QueryStore) List(_ context.Context) ([]domain.TrackedQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TrackedQuery, 0, len(s.queries))
	for _, q := range s.queries {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes a tracked query.
func (s *QueryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.queries, id)
	return nil
}
