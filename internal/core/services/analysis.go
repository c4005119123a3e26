package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/citescope/internal/analysis"
	"github.com/custodia-labs/citescope/internal/analysis/insights"
	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/ports/driven"
	"github.com/custodia-labs/citescope/internal/core/ports/driving"
	"github.com/custodia-labs/citescope/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisService snapshots stored events and queries, runs the engine
// and persists the result.
type AnalysisService struct {
	citations driven.CitationStore
	queries   driven.QueryStore
	results   driven.ResultStore
	settings  driving.SettingsService
	now       func() time.Time
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(
	citations driven.CitationStore,
	queries driven.QueryStore,
	results driven.ResultStore,
	settings driving.SettingsService,
) *AnalysisService {
	return &AnalysisService{
		citations: citations,
		queries:   queries,
		results:   results,
		settings:  settings,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for default window ends and run timestamps.
func (s *AnalysisService) SetClock(now func() time.Time) {
	s.now = now
}

// Run executes one analysis run and stores its result.
func (s *AnalysisService) Run(ctx context.Context, spec domain.RunSpec) (*domain.RunResult, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}
	if spec.Window != 0 {
		settings.Window = spec.Window
	}
	engine, err := analysis.New(*settings)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.snapshot(ctx, spec, settings.Window)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := engine.Run(snapshot)
	if err != nil {
		return nil, err
	}
	result.ID = uuid.NewString()
	result.Name = spec.Name
	result.CreatedAt = s.now().UTC()

	if err := s.results.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("saving run: %w", err)
	}
	logger.Info("run %s: %d events, %d gaps, %d patterns, %d recommendations",
		result.ID, result.Events, len(result.Gaps), len(result.Patterns), len(result.Recommendations))
	return result, nil
}

// RunMany executes independent runs concurrently. The first failure
// cancels runs that have not started loading yet.
func (s *AnalysisService) RunMany(ctx context.Context, specs []domain.RunSpec) ([]*domain.RunResult, error) {
	results := make([]*domain.RunResult, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	if settings, err := s.settings.Get(); err == nil && settings.Workers > 0 {
		g.SetLimit(settings.Workers)
	}
	for i, spec := range specs {
		g.Go(func() error {
			r, err := s.Run(gctx, spec)
			if err != nil {
				return fmt.Errorf("run %d (%s): %w", i, spec.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Get retrieves a stored run.
func (s *AnalysisService) Get(ctx context.Context, id string) (*domain.RunResult, error) {
	return s.results.Get(ctx, id)
}

// Latest retrieves the most recent stored run.
func (s *AnalysisService) Latest(ctx context.Context) (*domain.RunResult, error) {
	return s.results.Latest(ctx)
}

// List returns stored run listings, newest first.
func (s *AnalysisService) List(ctx context.Context) ([]domain.RunInfo, error) {
	return s.results.List(ctx)
}

// Recommendations regenerates the ranked sequence from a run's gaps and patterns.
func (s *AnalysisService) Recommendations(ctx context.Context, id string) (iter.Seq[domain.Recommendation], error) {
	var (
		run *domain.RunResult
		err error
	)
	if id == "" {
		run, err = s.results.Latest(ctx)
	} else {
		run, err = s.results.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	seq := insights.New(run.Settings.MinSupportDeviation).Generate(run.Gaps, run.Patterns)
	return seq.All(), nil
}

// snapshot loads the queries in scope and their stored events from the start
// of the previous window, which competitor trends compare against. Events of
// queries no longer tracked are left out.
func (s *AnalysisService) snapshot(ctx context.Context, spec domain.RunSpec, window time.Duration) (domain.Snapshot, error) {
	queries, err := s.queries.List(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("listing queries: %w", err)
	}
	if len(spec.QueryIDs) > 0 {
		queries, err = subset(queries, spec.QueryIDs)
		if err != nil {
			return domain.Snapshot{}, err
		}
	}

	asOf := spec.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}
	asOf = asOf.UTC()

	ids := make([]string, len(queries))
	for i, q := range queries {
		ids[i] = q.ID
	}
	var events []domain.CitationEvent
	if len(ids) > 0 {
		events, err = s.citations.List(ctx, driven.EventFilter{
			QueryIDs: ids,
			Since:    asOf.Add(-2 * window),
			Until:    asOf,
		})
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("listing events: %w", err)
		}
	}

	return domain.Snapshot{
		Events:  events,
		Queries: queries,
		AsOf:    asOf,
	}, nil
}

func subset(queries []domain.TrackedQuery, ids []string) ([]domain.TrackedQuery, error) {
	byID := make(map[string]domain.TrackedQuery, len(queries))
	for _, q := range queries {
		byID[q.ID] = q
	}
	var (
		out  []domain.TrackedQuery
		errs []error
		seen = make(map[string]bool, len(ids))
	)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		q, ok := byID[id]
		if !ok {
			errs = append(errs, fmt.Errorf("query %q: %w", id, domain.ErrNotFound))
			continue
		}
		out = append(out, q)
	}
	return out, errors.Join(errs...)
}
