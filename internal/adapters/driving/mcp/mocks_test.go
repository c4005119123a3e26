package mcp

import (
	"context"
	"iter"
	"slices"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	runs    map[string]*domain.RunResult
	latest  string
	err     error
	lastRun domain.RunSpec
}

func (m *mockAnalysisService) Run(_ context.Context, spec domain.RunSpec) (*domain.RunResult, error) {
	m.lastRun = spec
	if m.err != nil {
		return nil, m.err
	}
	return m.runs[m.latest], nil
}

func (m *mockAnalysisService) RunMany(ctx context.Context, specs []domain.RunSpec) ([]*domain.RunResult, error) {
	out := make([]*domain.RunResult, 0, len(specs))
	for _, spec := range specs {
		r, err := m.Run(ctx, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockAnalysisService) Get(_ context.Context, id string) (*domain.RunResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockAnalysisService) Latest(ctx context.Context) (*domain.RunResult, error) {
	if m.latest == "" {
		return nil, domain.ErrNoRuns
	}
	return m.Get(ctx, m.latest)
}

func (m *mockAnalysisService) List(_ context.Context) ([]domain.RunInfo, error) {
	var infos []domain.RunInfo
	for _, r := range m.runs {
		infos = append(infos, r.Info())
	}
	return infos, m.err
}

func (m *mockAnalysisService) Recommendations(ctx context.Context, id string) (iter.Seq[domain.Recommendation], error) {
	r, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return slices.Values(r.Recommendations), nil
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	queries []domain.TrackedQuery
	err     error
}

func (m *mockQueryService) Add(_ context.Context, _ domain.TrackedQuery) error { return m.err }

func (m *mockQueryService) Import(_ context.Context, q []domain.TrackedQuery) (int, error) {
	return len(q), m.err
}

func (m *mockQueryService) Get(_ context.Context, _ string) (*domain.TrackedQuery, error) {
	return nil, domain.ErrNotFound
}

func (m *mockQueryService) List(_ context.Context) ([]domain.TrackedQuery, error) {
	return m.queries, m.err
}

func (m *mockQueryService) Remove(_ context.Context, _ string) error { return m.err }

func sampleRun() *domain.RunResult {
	leader := "rival.com"
	return &domain.RunResult{
		ID:     "run-1",
		Name:   "weekly",
		Window: domain.Window{End: asOf, Duration: domain.DefaultWindow},
		Events: 40,
		Gaps: []domain.ContentGap{
			{
				QueryID: "q1", QueryText: "best crm", Rank: 1, OpportunityScore: 0.82,
				GapType: domain.GapAbsent, LeadingCompetitorDomain: &leader,
				MissingFeatures: []domain.Feature{domain.FeatureSchemaMarkup},
				Reasoning: []domain.FactorContribution{
					{Factor: domain.FactorSelfAbsence, RawValue: 1, Weight: 0.3, Contribution: 0.3},
				},
				Effort: domain.EffortMedium,
			},
			{QueryID: "q2", Rank: 2, OpportunityScore: 0.2, GapType: domain.GapLeading, Effort: domain.EffortLow},
		},
		Unevaluated: []domain.UnevaluatedQuery{{QueryID: "q3", Reason: "no citations in window"}},
		Patterns: []domain.Pattern{{
			SignatureKey:    "guide|1500-3000|schema|fresh",
			EnginesObserved: []domain.Engine{domain.EnginePerplexity},
			CitationRate:    0.5, BaselineRate: 0.25, Deviation: 1, SampleSize: 12,
			EngineRates: []domain.EngineRate{{Engine: domain.EnginePerplexity, CitationRate: 0.5}},
		}},
		Preferences: []domain.EnginePreference{{Engine: domain.EnginePerplexity, ContentType: "guide", Share: 0.7}},
		Exclusions:  []domain.Exclusion{{Kind: domain.ExclusionCluster, Subject: "list|lt500|no_schema|stale", SampleSize: 3}},
		Recommendations: []domain.Recommendation{
			{ID: "r1", QueryID: "q1", Tier: domain.TierHigh, Score: 0.82, Action: domain.ActionCreateContent, Title: "Add schema"},
			{ID: "r2", QueryID: "q2", Tier: domain.TierLow, Score: 0.2, Action: domain.ActionDefendPosition, Title: "Defend"},
		},
		Summary: domain.GapSummary{
			Evaluated: 2, MeanScore: domain.Known(0.51),
			ByTier: map[domain.PriorityTier]int{domain.TierHigh: 1, domain.TierLow: 1},
		},
	}
}

func newMock() *mockAnalysisService {
	run := sampleRun()
	return &mockAnalysisService{runs: map[string]*domain.RunResult{run.ID: run}, latest: run.ID}
}
