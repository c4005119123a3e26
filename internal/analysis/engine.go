package analysis

import (
	"errors"
	"time"

	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/logger"
)

// Engine runs the analysis pipeline over immutable snapshots.
// An Engine holds no per-run state, so independent runs may share it.
type Engine struct {
	settings domain.AnalysisSettings
	pipeline *Pipeline
}

// New creates an engine. Invalid settings are rejected with a
// ConfigurationError before any run can start.
func New(settings domain.AnalysisSettings) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		settings: settings,
		pipeline: NewPipeline(
			normaliseStage{},
			aggregateStage{},
			patternStage{},
			gapStage{},
			insightStage{},
		),
	}, nil
}

// Settings returns the engine's settings.
func (e *Engine) Settings() domain.AnalysisSettings {
	return e.settings
}

// Run executes every stage over the snapshot. A run either returns a
// complete result or fails before producing any output; configuration
// problems are all reported together.
func (e *Engine) Run(snapshot domain.Snapshot) (*domain.RunResult, error) {
	competitors := e.settings.CompetitorSet()

	var errs []error
	if snapshot.AsOf.IsZero() {
		errs = append(errs, &domain.ConfigurationError{Field: "as_of", Reason: "required"})
	}
	if err := domain.ValidateQueries(snapshot.Queries, competitors); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	window := domain.Window{End: snapshot.AsOf.UTC(), Duration: e.settings.Window}
	state := &RunState{
		Settings:    e.settings,
		Snapshot:    snapshot,
		Window:      window,
		Competitors: competitors,
		Result: &domain.RunResult{
			Window:     window,
			Settings:   e.settings,
			Exclusions: []domain.Exclusion{},
		},
	}

	logger.Section("Analysis")
	logger.Debug("window %s to %s, %d tracked queries", window.Start().Format(time.RFC3339), window.End.Format(time.RFC3339), len(snapshot.Queries))
	if err := e.pipeline.Process(state); err != nil {
		return nil, err
	}
	return state.Result, nil
}
