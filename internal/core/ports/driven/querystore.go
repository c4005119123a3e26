package driven

import (
	"context"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// QueryStore persists tracked queries.
type QueryStore interface {
	// Save creates or updates a tracked query.
	Save(ctx context.Context, query domain.TrackedQuery) error

	// Get retrieves a tracked query by ID.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.TrackedQuery, error)

	// List returns all tracked queries ordered by ID.
	List(ctx context.Context) ([]domain.TrackedQuery, error)

	// Delete removes a tracked query. Stored events are kept.
	Delete(ctx context.Context, id string) error
}
