package domain

// Trend compares a domain's citations with the preceding window.
type Trend string

// Trends.
const (
	TrendNew     Trend = "new"
	TrendRising  Trend = "rising"
	TrendStable  Trend = "stable"
	TrendFalling Trend = "falling"
	TrendGone    Trend = "gone"
)

// TrendBand is the relative change treated as stable.
const TrendBand = 0.2

// TrendOf classifies the change from previous to current.
func TrendOf(previous, current int) Trend {
	switch {
	case previous == 0 && current == 0:
		return TrendStable
	case previous == 0:
		return TrendNew
	case current == 0:
		return TrendGone
	}
	change := float64(current-previous) / float64(previous)
	switch {
	case change > TrendBand:
		return TrendRising
	case change < -TrendBand:
		return TrendFalling
	default:
		return TrendStable
	}
}

// DomainRole distinguishes owner domains from competitors.
type DomainRole string

// Domain roles.
const (
	RoleOwner      DomainRole = "owner"
	RoleCompetitor DomainRole = "competitor"
)

// EngineShare is the fraction of a domain's citations coming from an engine.
type EngineShare struct {
	Engine Engine  `json:"engine"`
	Share  float64 `json:"share"`
}

// CompetitorProfile summarises how a tracked domain is cited in the window.
type CompetitorProfile struct {
	Domain            string         `json:"domain"`
	Role              DomainRole     `json:"role"`
	Citations         int            `json:"citations"`
	PreviousCitations int            `json:"previous_citations"`
	QueriesCited      int            `json:"queries_cited"`
	AvgPosition       Measure        `json:"avg_position"`
	EngineShares      []EngineShare  `json:"engine_shares"`
	TopCitationTypes  []CitationType `json:"top_citation_types"`
	Trend             Trend          `json:"trend"`
}
