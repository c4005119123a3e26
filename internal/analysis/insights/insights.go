// Package insights turns scored gaps and patterns into prioritised
// recommendations.
package insights

import (
	"fmt"
	"iter"
	"sort"

	"github.com/google/uuid"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// namespace seeds recommendation IDs so the same item always gets the same ID.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://citescope.dev/recommendation"))

// Generator builds recommendation sequences.
type Generator struct {
	minDeviation float64
}

// New creates a generator. A pattern corroborates a gap only when its
// deviation is at least minDeviation.
func New(minDeviation float64) *Generator {
	return &Generator{minDeviation: minDeviation}
}

// item is a ranked, not yet rendered recommendation.
type item struct {
	gap          domain.ContentGap
	feature      domain.Feature
	tier         domain.PriorityTier
	corroborated bool
	pattern      string
}

// Sequence is a finite, restartable, ordered recommendation sequence.
type Sequence struct {
	items []item
}

// Generate ranks one item per (query, dominant missing feature) pair.
// Only the highest scoring gap of a pair survives.
func (g *Generator) Generate(gaps []domain.ContentGap, patterns []domain.Pattern) *Sequence {
	supported := make(map[string]bool)
	for _, p := range patterns {
		if p.Supports(g.minDeviation) {
			supported[p.SignatureKey] = true
		}
	}

	type pair struct {
		query   string
		feature domain.Feature
	}
	best := make(map[pair]item)
	for _, gap := range gaps {
		it := item{
			gap:     gap,
			feature: DominantFeature(gap),
			tier:    domain.TierForScore(gap.OpportunityScore),
		}
		if sig := gap.TargetSignature; sig != nil && !sig.IsUnknown() && supported[sig.Key()] {
			it.corroborated = true
			it.pattern = gap.TargetSignature.Key()
			it.tier = it.tier.Promote()
		}

		key := pair{query: gap.QueryID, feature: it.feature}
		if cur, ok := best[key]; !ok || gap.OpportunityScore > cur.gap.OpportunityScore {
			best[key] = it
		}
	}

	items := make([]item, 0, len(best))
	for _, it := range best {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.tier.Order() != b.tier.Order() {
			return a.tier.Order() < b.tier.Order()
		}
		if a.gap.OpportunityScore != b.gap.OpportunityScore {
			return a.gap.OpportunityScore > b.gap.OpportunityScore
		}
		if a.gap.QueryID != b.gap.QueryID {
			return a.gap.QueryID < b.gap.QueryID
		}
		return a.feature < b.feature
	})
	return &Sequence{items: items}
}

// Len returns the number of recommendations in the sequence.
func (s *Sequence) Len() int {
	return len(s.items)
}

// All yields recommendations in priority order. Each call starts over and
// yields the same items in the same order.
func (s *Sequence) All() iter.Seq[domain.Recommendation] {
	return func(yield func(domain.Recommendation) bool) {
		for _, it := range s.items {
			if !yield(render(it)) {
				return
			}
		}
	}
}

// Collect materialises the whole sequence.
func (s *Sequence) Collect() []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(s.items))
	for r := range s.All() {
		out = append(out, r)
	}
	return out
}

// DominantFeature is the missing feature with the widest competitor coverage.
// Ties resolve in tracked feature order. Empty when nothing is missing.
func DominantFeature(gap domain.ContentGap) domain.Feature {
	coverage := make(map[domain.Feature]float64, len(gap.FeatureEvidence))
	for _, ev := range gap.FeatureEvidence {
		coverage[ev.Feature] = ev.Coverage
	}
	missing := make(map[domain.Feature]bool, len(gap.MissingFeatures))
	for _, f := range gap.MissingFeatures {
		missing[f] = true
	}

	var dominant domain.Feature
	best := -1.0
	for _, f := range domain.TrackedFeatures() {
		if missing[f] && coverage[f] > best {
			dominant, best = f, coverage[f]
		}
	}
	return dominant
}

func render(it item) domain.Recommendation {
	gap := it.gap
	r := domain.Recommendation{
		ID:               uuid.NewSHA1(namespace, []byte(gap.QueryID+"|"+string(it.feature))).String(),
		QueryID:          gap.QueryID,
		QueryText:        gap.QueryText,
		Tier:             it.tier,
		Score:            gap.OpportunityScore,
		Feature:          it.feature,
		Action:           action(gap),
		Corroborated:     it.corroborated,
		PatternSignature: it.pattern,
		Effort:           gap.Effort,
	}
	if gap.LeadingCompetitorDomain != nil {
		r.LeadingCompetitor = *gap.LeadingCompetitorDomain
	}

	subject := gap.QueryText
	if subject == "" {
		subject = gap.QueryID
	}
	switch r.Action {
	case domain.ActionCreateContent:
		r.Title = fmt.Sprintf("Create %s content for %q", gap.SuggestedFormat, subject)
	case domain.ActionDefendPosition:
		r.Title = fmt.Sprintf("Defend citations for %q", subject)
	default:
		r.Title = fmt.Sprintf("Improve content cited for %q", subject)
	}
	r.Description = describe(gap, it)
	return r
}

func action(gap domain.ContentGap) domain.ActionType {
	switch gap.GapType {
	case domain.GapAbsent, domain.GapUncontested:
		return domain.ActionCreateContent
	case domain.GapLeading:
		return domain.ActionDefendPosition
	default:
		return domain.ActionOptimiseContent
	}
}

func describe(gap domain.ContentGap, it item) string {
	s := fmt.Sprintf("Opportunity %.2f (%s).", gap.OpportunityScore, gap.GapType)
	if r := gap.LeadingCompetitorDomain; r != nil {
		s += fmt.Sprintf(" Leading competitor: %s.", *r)
	}
	for _, ev := range gap.FeatureEvidence {
		if ev.Feature == it.feature {
			s += fmt.Sprintf(" Winning citations: %s %s; yours: %s.", ev.Feature, ev.Competitor, ev.Owner)
		}
	}
	if it.corroborated {
		s += fmt.Sprintf(" Backed by cited-content pattern %s.", it.pattern)
	}
	return s
}

// Summarise builds the headline view of a run's gaps.
func Summarise(gaps []domain.ContentGap, unevaluated []domain.UnevaluatedQuery, recs []domain.Recommendation) domain.GapSummary {
	s := domain.GapSummary{
		Evaluated:        len(gaps),
		Unevaluated:      len(unevaluated),
		MeanScore:        domain.Undefined(),
		ByTier:           make(map[domain.PriorityTier]int),
		ByType:           make(map[domain.GapType]int),
		TopOpportunities: []string{},
		QuickWins:        []string{},
	}
	for _, r := range recs {
		s.ByTier[r.Tier]++
	}

	sum := 0.0
	for _, g := range gaps {
		sum += g.OpportunityScore
		s.ByType[g.GapType]++
		if len(s.TopOpportunities) < domain.TopOpportunityMax {
			s.TopOpportunities = append(s.TopOpportunities, g.QueryID)
		}
		if g.Effort == domain.EffortLow && g.OpportunityScore >= domain.QuickWinScore {
			s.QuickWins = append(s.QuickWins, g.QueryID)
		}
	}
	if len(gaps) > 0 {
		s.MeanScore = domain.Known(sum / float64(len(gaps)))
	}
	return s
}
