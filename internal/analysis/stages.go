package analysis

import (
	"github.com/custodia-labs/citescope/internal/analysis/aggregator"
	"github.com/custodia-labs/citescope/internal/analysis/gaps"
	"github.com/custodia-labs/citescope/internal/analysis/insights"
	"github.com/custodia-labs/citescope/internal/analysis/normaliser"
	"github.com/custodia-labs/citescope/internal/analysis/patterns"
	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/logger"
)

type normaliseStage struct{}

func (normaliseStage) Name() string { return "normalise" }

func (normaliseStage) Process(s *RunState) error {
	n := normaliser.New(s.Snapshot.Queries, s.Settings.EngineRegistry(), s.Settings.CollectionInterval)
	res := n.Normalise(s.Snapshot.Records, s.Snapshot.Events)

	tracked := make(map[string]bool, len(s.Snapshot.Queries))
	for _, q := range s.Snapshot.Queries {
		tracked[q.ID] = true
	}
	events := make([]domain.CitationEvent, 0, len(s.Snapshot.Events)+len(res.Events))
	for _, e := range s.Snapshot.Events {
		if !tracked[e.QueryID] {
			res.Report.Untracked++
			continue
		}
		events = append(events, e)
	}
	events = append(events, res.Events...)
	normaliser.SortEvents(events)

	s.Events = events
	s.Result.Normalisation = res.Report
	if res.Report.Untracked > 0 {
		logger.Warn("normalise: dropped %d stored events for untracked queries", res.Report.Untracked)
	}
	logger.Debug("normalise: %d received, %d accepted, %d duplicates, %d rejected",
		res.Report.Received, res.Report.Accepted, res.Report.Duplicates, len(res.Report.Rejected))
	return nil
}

type aggregateStage struct{}

func (aggregateStage) Name() string { return "aggregate" }

func (aggregateStage) Process(s *RunState) error {
	agg := aggregator.New(s.Window, s.Settings.Workers)
	s.Windowed = agg.InWindow(s.Events)

	aggs, err := agg.Aggregate(s.Events)
	if err != nil {
		return err
	}
	s.Result.Events = len(s.Windowed)
	s.Result.Aggregates = aggs
	s.Result.Profiles = agg.Profiles(s.Events, s.Snapshot.Queries, s.Competitors)
	logger.Debug("aggregate: %d events in window, %d aggregates", len(s.Windowed), len(aggs))
	return nil
}

type patternStage struct{}

func (patternStage) Name() string { return "patterns" }

func (patternStage) Process(s *RunState) error {
	res, err := patterns.New(s.Settings.MinClusterSize, s.Settings.Workers).Recognise(s.Windowed)
	if err != nil {
		return err
	}
	s.Result.Patterns = res.Patterns
	s.Result.Preferences = res.Preferences
	s.Result.Positions = res.Positions
	s.Result.Temporal = res.Temporal
	s.Result.Exclusions = append(s.Result.Exclusions, res.Exclusions...)
	logger.Debug("patterns: %d patterns, %d clusters excluded", len(res.Patterns), len(res.Exclusions))
	return nil
}

type gapStage struct{}

func (gapStage) Name() string { return "gaps" }

func (gapStage) Process(s *RunState) error {
	res := gaps.New(s.Settings.Weights).Score(gaps.Input{
		Aggregates:  s.Result.Aggregates,
		Events:      s.Windowed,
		Queries:     s.Snapshot.Queries,
		Competitors: s.Competitors,
	})
	s.Result.Gaps = res.Gaps
	s.Result.Unevaluated = res.Unevaluated
	s.Result.Exclusions = append(s.Result.Exclusions, res.Exclusions...)
	logger.Debug("gaps: %d scored, %d unevaluated", len(res.Gaps), len(res.Unevaluated))
	return nil
}

type insightStage struct{}

func (insightStage) Name() string { return "insights" }

func (insightStage) Process(s *RunState) error {
	seq := insights.New(s.Settings.MinSupportDeviation).Generate(s.Result.Gaps, s.Result.Patterns)
	s.Result.Recommendations = seq.Collect()
	s.Result.Summary = insights.Summarise(s.Result.Gaps, s.Result.Unevaluated, s.Result.Recommendations)
	logger.Debug("insights: %d recommendations", seq.Len())
	return nil
}
