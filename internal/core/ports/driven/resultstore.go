package driven

import (
	"context"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// ResultStore persists completed analysis runs.
// Results are disposable derived views; a run is stored whole or not at all.
type ResultStore interface {
	// Save stores a run result.
	Save(ctx context.Context, result *domain.RunResult) error

	// Get retrieves a run by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.RunResult, error)

	// Latest returns the most recently created run.
	// Returns domain.ErrNoRuns if nothing has been stored.
	Latest(ctx context.Context) (*domain.RunResult, error)

	// List returns run listings, newest first.
	List(ctx context.Context) ([]domain.RunInfo, error)
}
