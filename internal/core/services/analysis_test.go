package services

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// seed tracks q1 and q2 for acme.com and ingests competitor-only citations.
func seed(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	_, err := f.query.Import(ctx, []domain.TrackedQuery{
		{ID: "q1", Text: "best crm for startups", OwnerDomains: []string{"acme.com"}, PriorityWeight: 2},
		{ID: "q2", Text: "how to migrate crm data", OwnerDomains: []string{"acme.com"}},
	})
	require.NoError(t, err)

	batch := records(5, "q1", "rival.com", 1)
	batch = append(batch, records(3, "q2", "rival.com", 2)...)
	batch = append(batch, records(2, "q2", "acme.com", 1)...)
	_, err = f.ingest.Ingest(ctx, batch)
	require.NoError(t, err)
}

func TestAnalysisService_RunStoresResult(t *testing.T) {
	f := newFixture(t, "rival.com")
	seed(t, f)
	ctx := context.Background()

	res, err := f.analysis.Run(ctx, domain.RunSpec{Name: "daily"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "daily", res.Name)
	assert.True(t, asOf.Equal(res.CreatedAt))
	assert.True(t, asOf.Equal(res.Window.End))
	assert.Equal(t, 10, res.Events)
	require.Len(t, res.Gaps, 2)
	assert.Equal(t, "q1", res.Gaps[0].QueryID)
	assert.Equal(t, domain.GapAbsent, res.Gaps[0].GapType)

	stored, err := f.analysis.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Same(t, res, stored)

	latest, err := f.analysis.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.ID, latest.ID)
}

func TestAnalysisService_RunQuerySubsetAndWindow(t *testing.T) {
	f := newFixture(t, "rival.com")
	seed(t, f)

	res, err := f.analysis.Run(context.Background(), domain.RunSpec{
		QueryIDs: []string{"q2"},
		Window:   2 * time.Hour,
	})

	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, res.Window.Duration)
	require.Len(t, res.Gaps, 1)
	assert.Equal(t, "q2", res.Gaps[0].QueryID)
	// Only observations one and two hours before asOf fall in the window.
	assert.Equal(t, 4, res.Events)
}

func TestAnalysisService_RunUnknownQuery(t *testing.T) {
	f := newFixture(t)
	seed(t, f)

	_, err := f.analysis.Run(context.Background(), domain.RunSpec{QueryIDs: []string{"q1", "nope"}})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.analysis.Latest(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoRuns)
}

func TestAnalysisService_RunConfigurationAbort(t *testing.T) {
	f := newFixture(t)
	seed(t, f)

	_, err := f.analysis.Run(context.Background(), domain.RunSpec{Window: -time.Hour})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	runs, err := f.analysis.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestAnalysisService_RunManyKeepsSpecOrder(t *testing.T) {
	f := newFixture(t, "rival.com")
	seed(t, f)

	specs := []domain.RunSpec{
		{Name: "all"},
		{Name: "q2", QueryIDs: []string{"q2"}},
		{Name: "short", Window: 3 * time.Hour},
	}
	results, err := f.analysis.RunMany(context.Background(), specs)

	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, specs[i].Name, r.Name)
	}
	assert.Len(t, results[0].Gaps, 2)
	assert.Len(t, results[1].Gaps, 1)
	runs, err := f.analysis.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestAnalysisService_RunManyFails(t *testing.T) {
	f := newFixture(t)
	seed(t, f)

	_, err := f.analysis.RunMany(context.Background(), []domain.RunSpec{
		{Name: "ok"},
		{Name: "bad", QueryIDs: []string{"missing"}},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "bad")
}

func TestAnalysisService_RecommendationsReplayable(t *testing.T) {
	f := newFixture(t, "rival.com")
	seed(t, f)
	ctx := context.Background()
	res, err := f.analysis.Run(ctx, domain.RunSpec{})
	require.NoError(t, err)

	seq, err := f.analysis.Recommendations(ctx, "")
	require.NoError(t, err)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, res.Recommendations, first)
	assert.Equal(t, first, second)

	_, err = f.analysis.Recommendations(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
