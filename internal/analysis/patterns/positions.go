package patterns

import (
	"sort"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

type positionKey struct {
	domain       string
	citationType domain.CitationType
}

type positionStats struct {
	positioned int
	top        int
	sum        int
	at         map[int]int
}

// Positions finds domain and citation type pairs that repeatedly take a top
// position. Nothing is reported until the window holds at least
// minClusterSize top-position citations.
func (r *Recogniser) Positions(events []domain.CitationEvent) []domain.PositionPattern {
	stats := make(map[positionKey]*positionStats)
	top := 0
	for _, e := range events {
		if e.Position == nil {
			continue
		}
		k := positionKey{domain: e.Domain, citationType: e.CitationType}
		s, ok := stats[k]
		if !ok {
			s = &positionStats{at: make(map[int]int)}
			stats[k] = s
		}
		p := *e.Position
		s.positioned++
		s.sum += p
		s.at[p]++
		if p <= domain.TopPositionMax {
			s.top++
			top++
		}
	}

	out := []domain.PositionPattern{}
	if top < r.minClusterSize {
		return out
	}
	for k, s := range stats {
		if s.top < domain.MinPositionTop {
			continue
		}
		dist := make([]domain.PositionCount, 0, len(s.at))
		for p, n := range s.at {
			dist = append(dist, domain.PositionCount{Position: p, Count: n})
		}
		sort.Slice(dist, func(i, j int) bool { return dist[i].Position < dist[j].Position })
		out = append(out, domain.PositionPattern{
			Domain:       k.domain,
			CitationType: k.citationType,
			Positioned:   s.positioned,
			TopPositions: s.top,
			TopShare:     float64(s.top) / float64(s.positioned),
			AvgPosition:  float64(s.sum) / float64(s.positioned),
			Distribution: dist,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TopPositions != b.TopPositions {
			return a.TopPositions > b.TopPositions
		}
		if a.AvgPosition != b.AvgPosition {
			return a.AvgPosition < b.AvgPosition
		}
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		return a.CitationType < b.CitationType
	})
	return out
}
