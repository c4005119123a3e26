// Package analysis runs the citation analysis engine: normalise, aggregate,
// recognise patterns, score gaps and generate recommendations.
package analysis

import (
	"fmt"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// Stage is one step of an engine run.
type Stage interface {
	// Name identifies the stage in errors and logs.
	Name() string

	// Process reads earlier stage outputs from the state and adds its own.
	Process(state *RunState) error
}

// RunState carries one run's intermediate results between stages.
// It is local to the run and never shared.
type RunState struct {
	Settings    domain.AnalysisSettings
	Snapshot    domain.Snapshot
	Window      domain.Window
	Competitors domain.CompetitorSet

	// Events are all normalised events: the snapshot's plus newly accepted ones.
	Events []domain.CitationEvent

	// Windowed are the events inside the window.
	Windowed []domain.CitationEvent

	Result *domain.RunResult
}

// Pipeline chains stages and runs them in order.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a pipeline with the given stages.
// Stages are executed in the order provided.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{
		stages: stages,
	}
}

// Process runs the state through all stages in order, stopping at the first error.
func (p *Pipeline) Process(state *RunState) error {
	if state == nil {
		return fmt.Errorf("run state is nil")
	}

	for _, stage := range p.stages {
		if err := stage.Process(state); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}

	return nil
}

// Add appends a stage to the pipeline.
func (p *Pipeline) Add(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Len returns the number of stages in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.stages)
}
