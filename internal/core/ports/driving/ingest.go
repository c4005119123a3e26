package driving

import (
	"context"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// IngestService normalises raw collector records and stores the resulting events.
type IngestService interface {
	// Ingest normalises a batch against the stored events and appends the
	// accepted ones. Dropped records are listed in the report, not returned
	// as an error.
	Ingest(ctx context.Context, records []domain.RawCitation) (*domain.NormalisationReport, error)
}
