package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/citescope/internal/analysis/normaliser"
	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/ports/driven"
	"github.com/custodia-labs/citescope/internal/core/ports/driving"
	"github.com/custodia-labs/citescope/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService normalises collector batches into the citation store.
type IngestService struct {
	citations driven.CitationStore
	queries   driven.QueryStore
	settings  driving.SettingsService
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	citations driven.CitationStore,
	queries driven.QueryStore,
	settings driving.SettingsService,
) *IngestService {
	return &IngestService{
		citations: citations,
		queries:   queries,
		settings:  settings,
	}
}

// Ingest normalises records against the stored events overlapping the
// batch's time span and appends the accepted events.
func (s *IngestService) Ingest(ctx context.Context, records []domain.RawCitation) (*domain.NormalisationReport, error) {
	logger.Section("Ingest")

	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	queries, err := s.queries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing queries: %w", err)
	}

	interval := settings.CollectionInterval
	var known []domain.CitationEvent
	if since, until, ok := span(records); ok {
		known, err = s.citations.List(ctx, driven.EventFilter{
			Since: domain.IntervalStart(since, interval),
			Until: domain.IntervalStart(until, interval).Add(interval),
		})
		if err != nil {
			return nil, fmt.Errorf("listing stored events: %w", err)
		}
	}

	res := normaliser.New(queries, settings.EngineRegistry(), interval).Normalise(records, known)

	inserted, err := s.citations.Append(ctx, res.Events, interval)
	if err != nil {
		return nil, fmt.Errorf("storing events: %w", err)
	}

	report := res.Report
	logger.Debug("ingest: %d received, %d accepted, %d stored, %d duplicates, %d already known",
		report.Received, report.Accepted, inserted, report.Duplicates, report.Known)
	if n := len(report.Rejected); n > 0 {
		logger.Warn("%d records rejected (%d orphaned)", n, report.Orphaned())
		for _, r := range report.Rejected {
			logger.Debug("rejected %s", r.Error())
		}
	}
	return &report, nil
}

// span returns the earliest and latest observation in a batch.
func span(records []domain.RawCitation) (since, until time.Time, ok bool) {
	for _, r := range records {
		if r.ObservedAt.IsZero() {
			continue
		}
		if !ok || r.ObservedAt.Before(since) {
			since = r.ObservedAt
		}
		if !ok || r.ObservedAt.After(until) {
			until = r.ObservedAt
		}
		ok = true
	}
	return since, until, ok
}
