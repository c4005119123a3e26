package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/ports/driven"
)

// Ensure CitationStore implements the interface.
var _ driven.CitationStore = (*CitationStore)(nil)

// CitationStore is an in-memory implementation of driven.CitationStore.
type CitationStore struct {
	mu     sync.RWMutex
	events []domain.CitationEvent
	keys   map[domain.EventKey]bool
}

// NewCitationStore creates a new in-memory citation store.
func NewCitationStore() *CitationStore {
	return &CitationStore{
		keys: make(map[domain.EventKey]bool),
	}
}

// Append stores events whose uniqueness key is not yet held.
func (s *CitationStore) Append(_ context.Context, events []domain.CitationEvent, interval time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, e := range events {
		key := e.Key(interval)
		if s.keys[key] {
			continue
		}
		s.keys[key] = true
		s.events = append(s.events, e)
		inserted++
	}
	return inserted, nil
}

// List returns events matching the filter.
func (s *CitationStore) List(_ context.Context, filter driven.EventFilter) ([]domain.CitationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CitationEvent, 0, len(s.events))
	for _, e := range s.events {
		if matches(filter, e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ObservedAt.Equal(b.ObservedAt) {
			return a.ObservedAt.Before(b.ObservedAt)
		}
		if a.QueryID != b.QueryID {
			return a.QueryID < b.QueryID
		}
		if a.Engine != b.Engine {
			return a.Engine < b.Engine
		}
		return a.URL < b.URL
	})
	return out, nil
}

// Count returns the number of stored events.
func (s *CitationStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}

func matches(f driven.EventFilter, e domain.CitationEvent) bool {
	if len(f.QueryIDs) > 0 && !slices.Contains(f.QueryIDs, e.QueryID) {
		return false
	}
	if !f.Since.IsZero() && e.ObservedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.ObservedAt.After(f.Until) {
		return false
	}
	return true
}
