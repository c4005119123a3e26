package domain

import "time"

// DefaultWindow is the default trailing aggregation window.
const DefaultWindow = 7 * 24 * time.Hour

// Window is a trailing time span ending at End. Both ends are inclusive.
type Window struct {
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// Start returns the beginning of the window.
func (w Window) Start() time.Time {
	return w.End.Add(-w.Duration)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start()) && !t.After(w.End)
}

// Previous returns the window of equal length immediately before w.
// The boundary instant belongs to w, not to Previous.
func (w Window) Previous() Window {
	return Window{End: w.Start().Add(-time.Nanosecond), Duration: w.Duration - time.Nanosecond}
}

// AggregateKey identifies one aggregate window.
type AggregateKey struct {
	QueryID string
	Engine  Engine
	Domain  string
}

// FeatureSummary holds feature means over events with non-null values.
// Each measure is Undefined when no event carried that feature.
type FeatureSummary struct {
	MeanWordCount        Measure `json:"mean_word_count"`
	SchemaMarkupRate     Measure `json:"schema_markup_rate"`
	MeanFreshnessAgeDays Measure `json:"mean_freshness_age_days"`

	// Samples counts events that carried at least one feature.
	Samples int `json:"samples"`
}

// Insufficient reports whether no feature data was observed at all.
func (s FeatureSummary) Insufficient() bool {
	return s.Samples == 0
}

// AggregateWindow is the windowed statistic for a (query, engine, domain) triple.
type AggregateWindow struct {
	QueryID       string               `json:"query_id"`
	Engine        Engine               `json:"engine"`
	Domain        string               `json:"domain"`
	CitationCount int                  `json:"citation_count"`
	AvgPosition   Measure              `json:"avg_position"`
	TypeHistogram map[CitationType]int `json:"citation_type_histogram"`
	Features      FeatureSummary       `json:"feature_summary"`
	FirstObserved time.Time            `json:"first_observed"`
	LastObserved  time.Time            `json:"last_observed"`
}

// Key returns the aggregate's identifying triple.
func (a AggregateWindow) Key() AggregateKey {
	return AggregateKey{QueryID: a.QueryID, Engine: a.Engine, Domain: a.Domain}
}
