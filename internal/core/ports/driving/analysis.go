package driving

import (
	"context"
	"iter"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// AnalysisService runs the pattern and gap engine over stored events.
type AnalysisService interface {
	// Run executes one analysis run and stores its result.
	// Configuration errors abort the run before anything is stored.
	Run(ctx context.Context, spec domain.RunSpec) (*domain.RunResult, error)

	// RunMany executes independent runs concurrently.
	// Results are returned in spec order.
	RunMany(ctx context.Context, specs []domain.RunSpec) ([]*domain.RunResult, error)

	// Get retrieves a stored run.
	Get(ctx context.Context, id string) (*domain.RunResult, error)

	// Latest retrieves the most recent stored run.
	Latest(ctx context.Context) (*domain.RunResult, error)

	// List returns stored run listings, newest first.
	List(ctx context.Context) ([]domain.RunInfo, error)

	// Recommendations regenerates the ranked recommendation sequence of a run.
	// An empty id means the latest run. The sequence may be ranged over repeatedly.
	Recommendations(ctx context.Context, id string) (iter.Seq[domain.Recommendation], error)
}
