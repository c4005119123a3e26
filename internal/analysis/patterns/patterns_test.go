package patterns

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

var (
	guideFeatures = domain.ContentFeatures{
		WordCount:        intPtr(2000),
		HasSchemaMarkup:  boolPtr(true),
		FreshnessAgeDays: intPtr(10),
		ContentType:      "guide",
	}
	listFeatures = domain.ContentFeatures{
		WordCount:   intPtr(300),
		ContentType: "listicle",
	}
)

// cite builds n events for a signature spread across the given domains.
func cite(n int, engine domain.Engine, features domain.ContentFeatures, start time.Time, domains ...string) []domain.CitationEvent {
	out := make([]domain.CitationEvent, 0, n)
	for i := 0; i < n; i++ {
		d := domains[i%len(domains)]
		out = append(out, domain.CitationEvent{
			QueryID:      fmt.Sprintf("q%d", i%3),
			Engine:       engine,
			Domain:       d,
			URL:          fmt.Sprintf("https://%s/%d", d, i),
			CitationType: domain.CitationAIOverview,
			ObservedAt:   start.Add(time.Duration(i) * time.Minute),
			Features:     features,
		})
	}
	return out
}

func TestRecognise_RateBaselineDeviation(t *testing.T) {
	events := append(
		cite(12, domain.EnginePerplexity, guideFeatures, t0, "a.com", "b.com"),
		cite(8, domain.EnginePerplexity, listFeatures, t0, "c.com", "d.com", "e.com", "f.com")...,
	)

	res, err := New(10, 2).Recognise(events)
	require.NoError(t, err)
	require.Len(t, res.Patterns, 1)

	p := res.Patterns[0]
	assert.Equal(t, "guide|1500-3000|schema|fresh", p.SignatureKey)
	assert.Equal(t, 12, p.SampleSize)
	assert.Equal(t, 2, p.DistinctDomains)
	assert.InDelta(t, 0.6, p.CitationRate, 1e-9)
	assert.InDelta(t, 2.0/6.0, p.BaselineRate, 1e-9)
	assert.InDelta(t, 0.8, p.Deviation, 1e-9)
	assert.Equal(t, []domain.Engine{domain.EnginePerplexity}, p.EnginesObserved)
	assert.Equal(t, t0, p.FirstObserved)
}

func TestRecognise_SmallClusterExcludedNotZero(t *testing.T) {
	events := append(
		cite(12, domain.EnginePerplexity, guideFeatures, t0, "a.com"),
		cite(8, domain.EnginePerplexity, listFeatures, t0, "c.com")...,
	)

	res, err := New(10, 1).Recognise(events)
	require.NoError(t, err)

	for _, p := range res.Patterns {
		assert.NotEqual(t, "listicle|lt500|unknown|unknown", p.SignatureKey)
	}
	require.Len(t, res.Exclusions, 1)
	ex := res.Exclusions[0]
	assert.Equal(t, domain.ExclusionCluster, ex.Kind)
	assert.Equal(t, "listicle|lt500|unknown|unknown", ex.Subject)
	assert.Equal(t, 8, ex.SampleSize)
	assert.ErrorIs(t, ex.Err(), domain.ErrInsufficientData)
}

func TestRecognise_FeaturelessClusterExcluded(t *testing.T) {
	events := append(
		cite(12, domain.EnginePerplexity, guideFeatures, t0, "a.com"),
		cite(20, domain.EnginePerplexity, domain.ContentFeatures{}, t0, "b.com", "c.com")...,
	)

	res, err := New(10, 2).Recognise(events)
	require.NoError(t, err)

	require.Len(t, res.Patterns, 1)
	assert.Equal(t, "guide|1500-3000|schema|fresh", res.Patterns[0].SignatureKey)
	assert.InDelta(t, 12.0/32.0, res.Patterns[0].CitationRate, 1e-9)

	require.Len(t, res.Exclusions, 1)
	ex := res.Exclusions[0]
	assert.Equal(t, domain.ExclusionCluster, ex.Kind)
	assert.Equal(t, "unknown|unknown|unknown|unknown", ex.Subject)
	assert.Equal(t, 20, ex.SampleSize)
	assert.Equal(t, "no content features observed", ex.Reason)
}

func positioned(events []domain.CitationEvent, positions ...int) []domain.CitationEvent {
	for i := range events {
		p := positions[i%len(positions)]
		events[i].Position = &p
	}
	return events
}

func TestPositions(t *testing.T) {
	events := positioned(cite(6, domain.EnginePerplexity, guideFeatures, t0, "a.com"), 1, 2)
	events = append(events, positioned(cite(6, domain.EnginePerplexity, guideFeatures, t0, "b.com"), 3, 8)...)
	events = append(events, positioned(cite(4, domain.EnginePerplexity, guideFeatures, t0, "c.com"), 1, 9, 9, 9)...)
	events = append(events, cite(5, domain.EnginePerplexity, guideFeatures, t0, "d.com")...)

	got := New(5, 1).Positions(events)

	require.Len(t, got, 2)
	assert.Equal(t, "a.com", got[0].Domain)
	assert.Equal(t, domain.CitationAIOverview, got[0].CitationType)
	assert.Equal(t, 6, got[0].TopPositions)
	assert.Equal(t, 6, got[0].Positioned)
	assert.InDelta(t, 1.0, got[0].TopShare, 1e-9)
	assert.InDelta(t, 1.5, got[0].AvgPosition, 1e-9)
	assert.Equal(t, []domain.PositionCount{{Position: 1, Count: 3}, {Position: 2, Count: 3}}, got[0].Distribution)

	assert.Equal(t, "b.com", got[1].Domain)
	assert.Equal(t, 3, got[1].TopPositions)
	assert.InDelta(t, 0.5, got[1].TopShare, 1e-9)
	assert.InDelta(t, 5.5, got[1].AvgPosition, 1e-9)
}

func TestPositions_TooFewTopCitations(t *testing.T) {
	events := positioned(cite(4, domain.EnginePerplexity, guideFeatures, t0, "a.com"), 1)

	assert.Empty(t, New(5, 1).Positions(events))
	assert.NotNil(t, New(5, 1).Positions(nil))
}

func daily(counts ...int) []domain.CitationEvent {
	var out []domain.CitationEvent
	for day, n := range counts {
		start := t0.AddDate(0, 0, day).Add(9 * time.Hour)
		out = append(out, cite(n, domain.EnginePerplexity, guideFeatures, start, "a.com")...)
	}
	return out
}

func TestTemporal(t *testing.T) {
	// t0 is a Monday; Sunday holds the spike.
	tp := Temporal(daily(2, 2, 2, 2, 2, 2, 9))

	require.NotNil(t, tp)
	assert.Equal(t, 7, tp.Days)
	assert.Equal(t, 21, tp.Citations)
	assert.InDelta(t, 3.0, tp.AvgDaily, 1e-9)
	assert.Equal(t, 9, tp.PeakDaily)
	assert.InDelta(t, math.Sqrt(7)/3, tp.Volatility, 1e-9)
	require.Len(t, tp.Spikes, 1)
	assert.Equal(t, t0.AddDate(0, 0, 6), tp.Spikes[0].Day)
	assert.Equal(t, 9, tp.Spikes[0].Count)
	assert.Equal(t, "Sunday", tp.BusiestWeekday)
	assert.Equal(t, "Monday", tp.QuietestWeekday)
	assert.True(t, tp.WeeklyVariation)
}

func TestTemporal_NeedsAWeek(t *testing.T) {
	assert.Nil(t, Temporal(daily(3, 3, 3, 3, 3, 3)))
	assert.Nil(t, Temporal(nil))

	tp := Temporal(daily(3, 3, 3, 3, 3, 3, 3))
	require.NotNil(t, tp)
	assert.Zero(t, tp.Volatility)
	assert.Empty(t, tp.Spikes)
	assert.False(t, tp.WeeklyVariation)
}

func TestRecognise_CrossEngineRates(t *testing.T) {
	events := append(
		cite(10, domain.EnginePerplexity, guideFeatures, t0, "a.com"),
		cite(5, domain.EngineBingCopilot, guideFeatures, t0, "a.com")...,
	)
	events = append(events, cite(5, domain.EngineBingCopilot, listFeatures, t0, "b.com")...)

	res, err := New(10, 1).Recognise(events)
	require.NoError(t, err)
	require.Len(t, res.Patterns, 1)

	p := res.Patterns[0]
	assert.Equal(t, []domain.Engine{domain.EngineBingCopilot, domain.EnginePerplexity}, p.EnginesObserved)
	assert.InDelta(t, 15.0/20.0, p.CitationRate, 1e-9)
	assert.Equal(t, []domain.EngineRate{
		{Engine: domain.EngineBingCopilot, Citations: 5, EngineTotal: 10, CitationRate: 0.5},
		{Engine: domain.EnginePerplexity, Citations: 10, EngineTotal: 10, CitationRate: 1},
	}, p.EngineRates)
	assert.InDelta(t, 0.5, p.EngineSpread().Value, 1e-9)
}

func TestDeviation(t *testing.T) {
	assert.Equal(t, domain.MaxDeviation, Deviation(0.9, 0.1))
	assert.Equal(t, domain.MinDeviation, Deviation(0, 0.5))
	assert.InDelta(t, 0.5, Deviation(0.3, 0.2), 1e-9)
	assert.Equal(t, 0.0, Deviation(0.3, 0))
}

func TestSortPatterns(t *testing.T) {
	patterns := []domain.Pattern{
		{SignatureKey: "weak", Deviation: 0.1, SampleSize: 10, FirstObserved: t0},
		{SignatureKey: "later", Deviation: -1, SampleSize: 20, FirstObserved: t0.Add(time.Hour)},
		{SignatureKey: "earlier", Deviation: 2, SampleSize: 10, FirstObserved: t0},
		{SignatureKey: "strong", Deviation: 5, SampleSize: 40, FirstObserved: t0},
	}

	SortPatterns(patterns)

	keys := make([]string, len(patterns))
	for i, p := range patterns {
		keys[i] = p.SignatureKey
	}
	assert.Equal(t, []string{"strong", "earlier", "later", "weak"}, keys)
}

func TestRecognise_EnginePreferences(t *testing.T) {
	events := append(
		cite(7, domain.EnginePerplexity, guideFeatures, t0, "a.com"),
		cite(3, domain.EnginePerplexity, listFeatures, t0, "b.com")...,
	)
	events = append(events, cite(4, domain.EngineBingCopilot, guideFeatures, t0, "a.com")...)

	res, err := New(10, 1).Recognise(events)
	require.NoError(t, err)

	require.Len(t, res.Preferences, 1)
	pref := res.Preferences[0]
	assert.Equal(t, domain.EnginePerplexity, pref.Engine)
	assert.Equal(t, "guide", pref.ContentType)
	assert.InDelta(t, 0.7, pref.Share, 1e-9)
}

func TestRecognise_Deterministic(t *testing.T) {
	events := append(
		cite(30, domain.EnginePerplexity, guideFeatures, t0, "a.com", "b.com", "c.com"),
		cite(25, domain.EngineBingCopilot, listFeatures, t0, "d.com", "a.com")...,
	)
	events = append(events, cite(11, domain.EngineChatGPTSearch, domain.ContentFeatures{}, t0, "e.com")...)

	first, err := New(10, 1).Recognise(events)
	require.NoError(t, err)
	second, err := New(10, 6).Recognise(events)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("recognise not deterministic (-first +second):\n%s", diff)
	}
}

func TestRecognise_Empty(t *testing.T) {
	res, err := New(10, 4).Recognise(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Patterns)
	assert.Empty(t, res.Exclusions)
	assert.Empty(t, res.Preferences)
}
