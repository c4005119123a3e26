package aggregator

import (
	"sort"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// topCitationTypes is how many citation types a profile lists.
const topCitationTypes = 3

// Profiles summarises every owner and competitor domain across all queries,
// comparing the window with the one before it. Domains are ordered by
// citations descending, then name.
func (a *Aggregator) Profiles(
	events []domain.CitationEvent,
	queries []domain.TrackedQuery,
	competitors domain.CompetitorSet,
) []domain.CompetitorProfile {
	roles := make(map[string]domain.DomainRole)
	for _, d := range competitors.Domains {
		roles[d] = domain.RoleCompetitor
	}
	for _, q := range queries {
		for _, d := range domain.CanonicalDomains(q.OwnerDomains) {
			roles[d] = domain.RoleOwner
		}
	}

	previous := make(map[string]int)
	for _, e := range filter(events, a.window.Previous()) {
		if _, ok := roles[e.Domain]; ok {
			previous[e.Domain]++
		}
	}

	type stats struct {
		citations   int
		queries     map[string]bool
		engines     map[domain.Engine]int
		types       map[domain.CitationType]int
		positions   int
		positionSum int
	}
	current := make(map[string]*stats, len(roles))
	for d := range roles {
		current[d] = &stats{
			queries: make(map[string]bool),
			engines: make(map[domain.Engine]int),
			types:   make(map[domain.CitationType]int),
		}
	}
	for _, e := range filter(events, a.window) {
		s, ok := current[e.Domain]
		if !ok {
			continue
		}
		s.citations++
		s.queries[e.QueryID] = true
		s.engines[e.Engine]++
		s.types[e.CitationType]++
		if e.Position != nil {
			s.positions++
			s.positionSum += *e.Position
		}
	}

	profiles := make([]domain.CompetitorProfile, 0, len(roles))
	for d, role := range roles {
		s := current[d]
		p := domain.CompetitorProfile{
			Domain:            d,
			Role:              role,
			Citations:         s.citations,
			PreviousCitations: previous[d],
			QueriesCited:      len(s.queries),
			AvgPosition:       mean(s.positionSum, s.positions),
			EngineShares:      engineShares(s.engines, s.citations),
			TopCitationTypes:  topTypes(s.types),
			Trend:             domain.TrendOf(previous[d], s.citations),
		}
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Citations != profiles[j].Citations {
			return profiles[i].Citations > profiles[j].Citations
		}
		return profiles[i].Domain < profiles[j].Domain
	})
	return profiles
}

func engineShares(counts map[domain.Engine]int, total int) []domain.EngineShare {
	shares := make([]domain.EngineShare, 0, len(counts))
	for e, n := range counts {
		shares = append(shares, domain.EngineShare{Engine: e, Share: float64(n) / float64(total)})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Share != shares[j].Share {
			return shares[i].Share > shares[j].Share
		}
		return shares[i].Engine < shares[j].Engine
	})
	return shares
}

func topTypes(counts map[domain.CitationType]int) []domain.CitationType {
	types := make([]domain.CitationType, 0, len(counts))
	for _, t := range domain.AllCitationTypes() {
		if counts[t] > 0 {
			types = append(types, t)
		}
	}
	sort.SliceStable(types, func(i, j int) bool {
		return counts[types[i]] > counts[types[j]]
	})
	if len(types) > topCitationTypes {
		types = types[:topCitationTypes]
	}
	return types
}
