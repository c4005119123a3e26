// Package gaps scores content gaps for tracked queries.
//
// Each query's opportunity score combines four factors, each normalised to
// [0, 1] and weighted:
//
//   - competitor_strength: top competitor citations over the query's top
//     owner-or-competitor citations
//   - self_absence: 1 when no owner domain is cited, otherwise the owner's
//     shortfall against the top competitor, floored at 0
//   - content_feature_gap: missing tracked features over the tracked feature set
//   - query_priority: priority weight over the run's highest priority weight
//
// Queries with no citations from any domain are reported as unevaluated
// rather than scored.
package gaps

import (
	"math"
	"sort"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

const (
	// dominatedShare is the competitor share of owner-plus-competitor
	// citations above which a cited owner is considered dominated.
	dominatedShare = 0.6

	// maxCompetingDomains caps the competing domains listed per gap.
	maxCompetingDomains = 5

	unevaluatedReason = "no citations from any domain in the window"

	// scorePrecision is the reciprocal of the smallest score step kept.
	scorePrecision = 1e9
)

// Input is everything the scorer reads. Events and aggregates must already
// be restricted to the window.
type Input struct {
	Aggregates  []domain.AggregateWindow
	Events      []domain.CitationEvent
	Queries     []domain.TrackedQuery
	Competitors domain.CompetitorSet
}

// Result holds the ranked gaps and the queries that could not be scored.
type Result struct {
	Gaps        []domain.ContentGap
	Unevaluated []domain.UnevaluatedQuery
	Exclusions  []domain.Exclusion
}

// Scorer computes opportunity scores.
type Scorer struct {
	weights domain.Weights
}

// New creates a scorer with the given factor weights.
func New(weights domain.Weights) *Scorer {
	return &Scorer{weights: weights}
}

// domainStats is a domain's evidence for one query.
type domainStats struct {
	domain      string
	count       int
	positions   int
	positionSum int
}

func (d domainStats) avgPosition() domain.Measure {
	if d.positions == 0 {
		return domain.Undefined()
	}
	return domain.Known(float64(d.positionSum) / float64(d.positions))
}

// Score evaluates every tracked query and ranks the gaps.
func (s *Scorer) Score(in Input) *Result {
	maxPriority := 0.0
	for _, q := range in.Queries {
		maxPriority = math.Max(maxPriority, q.Priority())
	}

	counts := make(map[string]map[string]*domainStats)
	for _, a := range in.Aggregates {
		byDomain, ok := counts[a.QueryID]
		if !ok {
			byDomain = make(map[string]*domainStats)
			counts[a.QueryID] = byDomain
		}
		ds, ok := byDomain[a.Domain]
		if !ok {
			ds = &domainStats{domain: a.Domain}
			byDomain[a.Domain] = ds
		}
		ds.count += a.CitationCount
	}

	events := make(map[string][]domain.CitationEvent)
	for _, e := range in.Events {
		events[e.QueryID] = append(events[e.QueryID], e)
		if ds, ok := counts[e.QueryID][e.Domain]; ok && e.Position != nil {
			ds.positions++
			ds.positionSum += *e.Position
		}
	}

	related := RelatedQueries(in.Queries)
	res := &Result{
		Gaps:        []domain.ContentGap{},
		Unevaluated: []domain.UnevaluatedQuery{},
		Exclusions:  []domain.Exclusion{},
	}
	for _, q := range in.Queries {
		total := 0
		for _, ds := range counts[q.ID] {
			total += ds.count
		}
		if total == 0 {
			res.Unevaluated = append(res.Unevaluated, domain.UnevaluatedQuery{
				QueryID:   q.ID,
				QueryText: q.Text,
				Reason:    unevaluatedReason,
			})
			res.Exclusions = append(res.Exclusions, domain.Exclusion{
				Kind:    domain.ExclusionQuery,
				Subject: q.ID,
				Reason:  unevaluatedReason,
			})
			continue
		}
		gap := s.scoreQuery(q, counts[q.ID], events[q.ID], in.Competitors, maxPriority, total)
		gap.RelatedQueries = related[q.ID]
		res.Gaps = append(res.Gaps, gap)
	}

	Rank(res.Gaps)
	sort.Slice(res.Unevaluated, func(i, j int) bool {
		return res.Unevaluated[i].QueryID < res.Unevaluated[j].QueryID
	})
	sort.Slice(res.Exclusions, func(i, j int) bool {
		return res.Exclusions[i].Subject < res.Exclusions[j].Subject
	})
	return res
}

func (s *Scorer) scoreQuery(
	q domain.TrackedQuery,
	byDomain map[string]*domainStats,
	events []domain.CitationEvent,
	competitors domain.CompetitorSet,
	maxPriority float64,
	total int,
) domain.ContentGap {
	var (
		ownBest, ownTotal  int
		compMax, compTotal int
		leader             *domainStats
		competing          []domain.DomainCount
	)
	for _, ds := range byDomain {
		switch {
		case q.IsOwner(ds.domain):
			ownBest = max(ownBest, ds.count)
			ownTotal += ds.count
		case competitors.Has(ds.domain):
			compMax = max(compMax, ds.count)
			compTotal += ds.count
			if ds.count > 0 && leads(ds, leader) {
				leader = ds
			}
			competing = append(competing, domain.DomainCount{Domain: ds.domain, Count: ds.count})
		default:
			competing = append(competing, domain.DomainCount{Domain: ds.domain, Count: ds.count})
		}
	}

	raw := map[domain.Factor]float64{
		domain.FactorCompetitorStrength: CompetitorStrength(compMax, ownBest),
		domain.FactorSelfAbsence:        SelfAbsence(ownBest, compMax),
		domain.FactorQueryPriority:      q.Priority() / maxPriority,
	}

	var reference, owner, thirdParty []domain.CitationEvent
	for _, e := range events {
		switch {
		case q.IsOwner(e.Domain):
			owner = append(owner, e)
		case competitors.Has(e.Domain):
			reference = append(reference, e)
		default:
			thirdParty = append(thirdParty, e)
		}
	}
	// With no competitor citations, whatever is cited sets the bar.
	if len(reference) == 0 {
		reference = thirdParty
	}
	evidence := compareFeatures(reference, owner)
	missing := []domain.Feature{}
	for _, ev := range evidence {
		if ev.Missing {
			missing = append(missing, ev.Feature)
		}
	}
	raw[domain.FactorContentFeatureGap] = float64(len(missing)) / float64(len(domain.TrackedFeatures()))

	reasoning := make([]domain.FactorContribution, 0, len(raw))
	score := 0.0
	for _, f := range domain.AllFactors() {
		w := s.weights.Of(f)
		c := FactorContribution(f, raw[f], w)
		reasoning = append(reasoning, c)
		score += c.Contribution
	}
	sort.SliceStable(reasoning, func(i, j int) bool {
		return reasoning[i].Contribution > reasoning[j].Contribution
	})

	sort.Slice(competing, func(i, j int) bool {
		if competing[i].Count != competing[j].Count {
			return competing[i].Count > competing[j].Count
		}
		return competing[i].Domain < competing[j].Domain
	})
	if len(competing) > maxCompetingDomains {
		competing = competing[:maxCompetingDomains]
	}

	gapType := Classify(ownBest, ownTotal, compMax, compTotal)
	gap := domain.ContentGap{
		QueryID:          q.ID,
		QueryText:        q.Text,
		OpportunityScore: clamp(round(score)),
		Reasoning:        reasoning,
		MissingFeatures:  missing,
		FeatureEvidence:  evidence,
		GapType:          gapType,
		TotalCitations:   total,
		OwnerCitations:   ownTotal,
		CompetingDomains: competing,
		TargetSignature:  dominantSignature(reference),
		SuggestedFormat:  SuggestFormat(q.Text),
		ContentAngles:    ContentAngles(q.Text, gapType),
		Effort:           EstimateEffort(q.Text, gapType),
	}
	if gap.CompetingDomains == nil {
		gap.CompetingDomains = []domain.DomainCount{}
	}
	if leader != nil {
		d := leader.domain
		gap.LeadingCompetitorDomain = &d
	}
	return gap
}

// leads reports whether a should replace the current leader b: more
// citations, then better (lower) average position, then lexical domain order.
func leads(a, b *domainStats) bool {
	if b == nil {
		return true
	}
	if a.count != b.count {
		return a.count > b.count
	}
	pa, pb := a.avgPosition(), b.avgPosition()
	if pa.Defined != pb.Defined {
		return pa.Defined
	}
	if pa.Defined && pa.Value != pb.Value {
		return pa.Value < pb.Value
	}
	return a.domain < b.domain
}

// CompetitorStrength normalises the top competitor count against the top
// owner-or-competitor count. It is 0 when no competitor is cited.
func CompetitorStrength(compMax, ownBest int) float64 {
	if compMax == 0 {
		return 0
	}
	return float64(compMax) / float64(max(compMax, ownBest))
}

// SelfAbsence is 1 when the owner is not cited, otherwise the owner's
// shortfall against the top competitor, floored at 0.
func SelfAbsence(ownBest, compMax int) float64 {
	if ownBest == 0 {
		return 1
	}
	if compMax == 0 {
		return 0
	}
	return math.Max(0, 1-float64(ownBest)/float64(compMax))
}

// FactorContribution builds a reasoning line. The raw value is clamped to
// [0, 1]; raw value and contribution are rounded to scorePrecision.
func FactorContribution(f domain.Factor, raw, weight float64) domain.FactorContribution {
	raw = round(clamp(raw))
	return domain.FactorContribution{
		Factor:       f,
		RawValue:     raw,
		Weight:       weight,
		Contribution: round(raw * weight),
	}
}

// Classify names the competitive situation of a query.
func Classify(ownBest, ownTotal, compMax, compTotal int) domain.GapType {
	switch {
	case ownBest == 0 && compMax > 0:
		return domain.GapAbsent
	case ownBest == 0:
		return domain.GapUncontested
	case ownBest >= compMax:
		return domain.GapLeading
	case float64(compTotal)/float64(compTotal+ownTotal) >= dominatedShare:
		return domain.GapCompetitorDominated
	default:
		return domain.GapUnderperforming
	}
}

// Rank orders gaps by score descending, then query priority descending,
// then query ID, and assigns 1-based ranks.
func Rank(gaps []domain.ContentGap) {
	priority := func(g domain.ContentGap) float64 {
		c, _ := g.Factor(domain.FactorQueryPriority)
		return c.RawValue
	}
	sort.Slice(gaps, func(i, j int) bool {
		a, b := gaps[i], gaps[j]
		if a.OpportunityScore != b.OpportunityScore {
			return a.OpportunityScore > b.OpportunityScore
		}
		if pa, pb := priority(a), priority(b); pa != pb {
			return pa > pb
		}
		return a.QueryID < b.QueryID
	})
	for i := range gaps {
		gaps[i].Rank = i + 1
	}
}

// round drops float noise so that sums such as 0.35+0.30+0.15 compare equal
// to the tier thresholds they are meant to hit.
func round(v float64) float64 {
	return math.Round(v*scorePrecision) / scorePrecision
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
