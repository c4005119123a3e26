package gaps

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// majority is the share a feature needs among winning citations to count as present.
const majority = 0.5

// compareFeatures evaluates every tracked feature of the owner's citations
// against the reference (winning) citations. With no owner citations, every
// feature present among the reference counts as missing.
func compareFeatures(reference, owner []domain.CitationEvent) []domain.FeatureEvidence {
	return []domain.FeatureEvidence{
		compareSchema(reference, owner),
		compareWordCount(reference, owner),
		compareFreshness(reference, owner),
		compareContentType(reference, owner),
	}
}

func compareSchema(reference, owner []domain.CitationEvent) domain.FeatureEvidence {
	ev := domain.FeatureEvidence{Feature: domain.FeatureSchemaMarkup}
	refRate := schemaRate(reference)
	ev.Coverage = refRate
	ev.Present = len(reference) > 0 && refRate > majority
	ev.Competitor = percent(refRate)

	if len(owner) == 0 {
		ev.Owner = "not cited"
		ev.Missing = ev.Present
		return ev
	}
	ownRate := schemaRate(owner)
	ev.Owner = percent(ownRate)
	ev.Missing = ev.Present && ownRate <= majority
	return ev
}

func schemaRate(events []domain.CitationEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	n := 0
	for _, e := range events {
		if e.Features.HasSchemaMarkup != nil && *e.Features.HasSchemaMarkup {
			n++
		}
	}
	return float64(n) / float64(len(events))
}

func compareWordCount(reference, owner []domain.CitationEvent) domain.FeatureEvidence {
	ev := domain.FeatureEvidence{Feature: domain.FeatureWordCount}
	refValues := wordCounts(reference)
	ev.Coverage = coverage(len(refValues), len(reference))
	ev.Present = ev.Coverage > majority
	refMedian := median(refValues)
	ev.Competitor = describeMedian(refMedian, "words")

	ownValues := wordCounts(owner)
	ownMedian := median(ownValues)
	ev.Owner = describeOwner(owner, ownMedian, "words")
	ev.Missing = ev.Present && (!ownMedian.Defined || ownMedian.Value < refMedian.Value)
	return ev
}

func wordCounts(events []domain.CitationEvent) []int {
	var out []int
	for _, e := range events {
		if e.Features.WordCount != nil {
			out = append(out, *e.Features.WordCount)
		}
	}
	return out
}

func compareFreshness(reference, owner []domain.CitationEvent) domain.FeatureEvidence {
	ev := domain.FeatureEvidence{Feature: domain.FeatureFreshness}
	refValues := ages(reference)
	ev.Coverage = coverage(len(refValues), len(reference))
	ev.Present = ev.Coverage > majority
	refMedian := median(refValues)
	ev.Competitor = describeMedian(refMedian, "days old")

	ownValues := ages(owner)
	ownMedian := median(ownValues)
	ev.Owner = describeOwner(owner, ownMedian, "days old")
	ev.Missing = ev.Present && (!ownMedian.Defined || ownMedian.Value > refMedian.Value)
	return ev
}

func ages(events []domain.CitationEvent) []int {
	var out []int
	for _, e := range events {
		if e.Features.FreshnessAgeDays != nil {
			out = append(out, *e.Features.FreshnessAgeDays)
		}
	}
	return out
}

func compareContentType(reference, owner []domain.CitationEvent) domain.FeatureEvidence {
	ev := domain.FeatureEvidence{Feature: domain.FeatureContentType}
	refType, refCount := dominantType(reference)
	ev.Coverage = coverage(refCount, len(reference))
	ev.Present = refType != "" && ev.Coverage > majority
	ev.Competitor = refType
	if refType == "" {
		ev.Competitor = "mixed"
	}

	if len(owner) == 0 {
		ev.Owner = "not cited"
		ev.Missing = ev.Present
		return ev
	}
	n := 0
	for _, e := range owner {
		if domain.NormaliseContentType(e.Features.ContentType) == refType {
			n++
		}
	}
	share := coverage(n, len(owner))
	ownType, _ := dominantType(owner)
	ev.Owner = ownType
	if ownType == "" {
		ev.Owner = "mixed"
	}
	ev.Missing = ev.Present && share <= majority
	return ev
}

// dominantType returns the most frequent known content type and its count.
// Ties resolve to the lexically smaller type.
func dominantType(events []domain.CitationEvent) (string, int) {
	counts := make(map[string]int)
	for _, e := range events {
		ct := domain.NormaliseContentType(e.Features.ContentType)
		if ct != domain.UnknownContentType {
			counts[ct]++
		}
	}
	var top string
	topCount := 0
	for ct, n := range counts {
		if n > topCount || (n == topCount && ct < top) {
			top, topCount = ct, n
		}
	}
	return top, topCount
}

// dominantSignature returns the most frequent feature signature among events.
func dominantSignature(events []domain.CitationEvent) *domain.FeatureSignature {
	if len(events) == 0 {
		return nil
	}
	counts := make(map[string]int)
	sigs := make(map[string]domain.FeatureSignature)
	for _, e := range events {
		sig := domain.SignatureOf(e.Features)
		counts[sig.Key()]++
		sigs[sig.Key()] = sig
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	sig := sigs[keys[0]]
	return &sig
}

func coverage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func median(values []int) domain.Measure {
	if len(values) == 0 {
		return domain.Undefined()
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return domain.Known(float64(sorted[mid]))
	}
	return domain.Known(float64(sorted[mid-1]+sorted[mid]) / 2)
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func describeMedian(m domain.Measure, unit string) string {
	if !m.Defined {
		return "unknown"
	}
	return fmt.Sprintf("median %.0f %s", m.Value, unit)
}

func describeOwner(owner []domain.CitationEvent, m domain.Measure, unit string) string {
	if len(owner) == 0 {
		return "not cited"
	}
	return describeMedian(m, unit)
}
