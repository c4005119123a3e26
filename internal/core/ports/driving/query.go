package driving

import (
	"context"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// QueryService manages tracked queries.
type QueryService interface {
	// Add creates or updates a tracked query.
	Add(ctx context.Context, query domain.TrackedQuery) error

	// Import adds a batch of queries. The batch is validated as a whole
	// and nothing is stored if any query is invalid.
	Import(ctx context.Context, queries []domain.TrackedQuery) (int, error)

	// Get retrieves a tracked query.
	Get(ctx context.Context, id string) (*domain.TrackedQuery, error)

	// List returns all tracked queries.
	List(ctx context.Context) ([]domain.TrackedQuery, error)

	// Remove deletes a tracked query.
	Remove(ctx context.Context, id string) error
}
