package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// EventFilter narrows a citation event listing.
// Zero values leave the corresponding dimension unbounded.
type EventFilter struct {
	QueryIDs []string
	Since    time.Time
	Until    time.Time
}

// CitationStore persists normalised citation events.
// Events are append-only facts: the store never edits or deletes them.
type CitationStore interface {
	// Append stores events, skipping any whose uniqueness key (query, engine,
	// url, interval) is already stored. Returns the number of events inserted.
	Append(ctx context.Context, events []domain.CitationEvent, interval time.Duration) (int, error)

	// List returns events matching the filter ordered by observed_at, query, engine, url.
	List(ctx context.Context, filter EventFilter) ([]domain.CitationEvent, error)

	// Count returns the number of stored events.
	Count(ctx context.Context) (int, error)
}
