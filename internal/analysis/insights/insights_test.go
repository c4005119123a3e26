package insights

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

var guideSig = domain.FeatureSignature{
	ContentType: "guide",
	WordCount:   domain.Words1500To3000,
	Schema:      domain.SchemaPresent,
	Freshness:   domain.FreshWithin30Days,
}

func gap(id string, score float64, missing ...domain.Feature) domain.ContentGap {
	rival := "rival.com"
	g := domain.ContentGap{
		QueryID:                 id,
		QueryText:               "query " + id,
		OpportunityScore:        score,
		GapType:                 domain.GapAbsent,
		LeadingCompetitorDomain: &rival,
		MissingFeatures:         missing,
		SuggestedFormat:         "tutorial_guide",
		Effort:                  domain.EffortMedium,
	}
	for i, f := range domain.TrackedFeatures() {
		g.FeatureEvidence = append(g.FeatureEvidence, domain.FeatureEvidence{
			Feature:  f,
			Coverage: 0.6 + 0.1*float64(i),
		})
	}
	return g
}

func TestGenerate_TierThresholds(t *testing.T) {
	seq := New(0.1).Generate([]domain.ContentGap{
		gap("a", 0.85),
		gap("b", 0.8),
		gap("c", 0.55),
		gap("d", 0.2),
	}, nil)

	recs := seq.Collect()
	require.Len(t, recs, 4)
	assert.Equal(t, domain.TierHigh, recs[0].Tier)
	assert.Equal(t, "a", recs[0].QueryID)
	assert.Equal(t, domain.TierHigh, recs[1].Tier)
	assert.Equal(t, domain.TierMedium, recs[2].Tier)
	assert.Equal(t, domain.TierLow, recs[3].Tier)
}

func TestGenerate_PatternPromotesOneTier(t *testing.T) {
	backed := gap("backed", 0.55)
	backed.TargetSignature = &guideSig
	capped := gap("capped", 0.9)
	capped.TargetSignature = &guideSig
	weak := gap("weak", 0.6)
	other := guideSig
	other.ContentType = "listicle"
	weak.TargetSignature = &other

	patterns := []domain.Pattern{
		{SignatureKey: guideSig.Key(), Deviation: 0.8, SampleSize: 20},
		{SignatureKey: other.Key(), Deviation: 0.05, SampleSize: 20},
	}
	recs := New(0.1).Generate([]domain.ContentGap{backed, capped, weak}, patterns).Collect()

	byQuery := make(map[string]domain.Recommendation)
	for _, r := range recs {
		byQuery[r.QueryID] = r
	}
	assert.Equal(t, domain.TierHigh, byQuery["backed"].Tier)
	assert.True(t, byQuery["backed"].Corroborated)
	assert.Equal(t, guideSig.Key(), byQuery["backed"].PatternSignature)
	assert.Equal(t, domain.TierHigh, byQuery["capped"].Tier)
	assert.Equal(t, domain.TierMedium, byQuery["weak"].Tier)
	assert.False(t, byQuery["weak"].Corroborated)

	// Promoted medium gap ranks with the high tier but below a higher score.
	assert.Equal(t, "capped", recs[0].QueryID)
	assert.Equal(t, "backed", recs[1].QueryID)
}

func TestGenerate_UnknownSignatureNeverCorroborates(t *testing.T) {
	unknown := domain.SignatureOf(domain.ContentFeatures{})
	g := gap("bare", 0.55)
	g.TargetSignature = &unknown

	patterns := []domain.Pattern{{SignatureKey: unknown.Key(), Deviation: 0.9, SampleSize: 50}}
	recs := New(0.1).Generate([]domain.ContentGap{g}, patterns).Collect()

	require.Len(t, recs, 1)
	assert.False(t, recs[0].Corroborated)
	assert.Empty(t, recs[0].PatternSignature)
	assert.Equal(t, domain.TierMedium, recs[0].Tier)
}

func TestGenerate_DedupKeepsHighestScore(t *testing.T) {
	recs := New(0.1).Generate([]domain.ContentGap{
		gap("q1", 0.4, domain.FeatureSchemaMarkup),
		gap("q1", 0.7, domain.FeatureSchemaMarkup),
		gap("q1", 0.5, domain.FeatureWordCount),
	}, nil).Collect()

	require.Len(t, recs, 2)
	assert.Equal(t, 0.7, recs[0].Score)
	assert.Equal(t, domain.FeatureSchemaMarkup, recs[0].Feature)
	assert.Equal(t, domain.FeatureWordCount, recs[1].Feature)
}

func TestDominantFeature(t *testing.T) {
	g := gap("q1", 0.5, domain.FeatureSchemaMarkup, domain.FeatureFreshness)
	assert.Equal(t, domain.FeatureFreshness, DominantFeature(g))

	assert.Equal(t, domain.Feature(""), DominantFeature(gap("q2", 0.5)))
}

func TestSequence_Restartable(t *testing.T) {
	seq := New(0.1).Generate([]domain.ContentGap{
		gap("b", 0.5, domain.FeatureWordCount),
		gap("a", 0.5, domain.FeatureContentType),
		gap("c", 0.9),
	}, nil)

	first := seq.Collect()
	second := seq.Collect()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("sequence not restartable (-first +second):\n%s", diff)
	}
	assert.Equal(t, 3, seq.Len())
	assert.Equal(t, []string{"c", "a", "b"}, []string{first[0].QueryID, first[1].QueryID, first[2].QueryID})

	again := New(0.1).Generate([]domain.ContentGap{
		gap("c", 0.9),
		gap("a", 0.5, domain.FeatureContentType),
		gap("b", 0.5, domain.FeatureWordCount),
	}, nil).Collect()
	assert.Equal(t, first, again)
}

func TestSequence_EarlyStop(t *testing.T) {
	seq := New(0.1).Generate([]domain.ContentGap{gap("a", 0.9), gap("b", 0.8), gap("c", 0.7)}, nil)

	var seen []string
	for r := range seq.All() {
		seen = append(seen, r.QueryID)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestRender(t *testing.T) {
	g := gap("q1", 0.9, domain.FeatureSchemaMarkup)
	recs := New(0.1).Generate([]domain.ContentGap{g}, nil).Collect()
	require.Len(t, recs, 1)

	r := recs[0]
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, domain.ActionCreateContent, r.Action)
	assert.Equal(t, "rival.com", r.LeadingCompetitor)
	assert.Contains(t, r.Title, "tutorial_guide")
	assert.Contains(t, r.Description, "rival.com")

	leading := gap("q2", 0.1)
	leading.GapType = domain.GapLeading
	assert.Equal(t, domain.ActionDefendPosition, New(0.1).Generate([]domain.ContentGap{leading}, nil).Collect()[0].Action)

	// IDs depend only on query and feature.
	other := New(0.1).Generate([]domain.ContentGap{gap("q1", 0.2, domain.FeatureSchemaMarkup)}, nil).Collect()
	assert.Equal(t, r.ID, other[0].ID)
}

func TestSummarise(t *testing.T) {
	quick := gap("quick", 0.7)
	quick.Effort = domain.EffortLow
	gaps := []domain.ContentGap{gap("a", 0.9), quick, gap("b", 0.2)}
	gaps[2].GapType = domain.GapLeading
	recs := New(0.1).Generate(gaps, nil).Collect()

	s := Summarise(gaps, []domain.UnevaluatedQuery{{QueryID: "z"}}, recs)

	assert.Equal(t, 3, s.Evaluated)
	assert.Equal(t, 1, s.Unevaluated)
	assert.InDelta(t, 0.6, s.MeanScore.Value, 1e-9)
	assert.Equal(t, 1, s.ByTier[domain.TierHigh])
	assert.Equal(t, 1, s.ByTier[domain.TierMedium])
	assert.Equal(t, 1, s.ByTier[domain.TierLow])
	assert.Equal(t, 2, s.ByType[domain.GapAbsent])
	assert.Equal(t, []string{"a", "quick", "b"}, s.TopOpportunities)
	assert.Equal(t, []string{"quick"}, s.QuickWins)
}

func TestSummarise_Empty(t *testing.T) {
	s := Summarise(nil, nil, nil)
	assert.False(t, s.MeanScore.Defined)
	assert.Empty(t, s.TopOpportunities)
}
