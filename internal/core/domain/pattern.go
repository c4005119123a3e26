package domain

import (
	"math"
	"time"
)

// Deviation clipping bounds.
const (
	MinDeviation = -1.0
	MaxDeviation = 5.0
)

// DefaultMinClusterSize is the default minimum sample size for a pattern.
const DefaultMinClusterSize = 10

// EngineRate is a pattern's citation rate on a single engine.
type EngineRate struct {
	Engine       Engine  `json:"engine"`
	Citations    int     `json:"citations"`
	EngineTotal  int     `json:"engine_total"`
	CitationRate float64 `json:"citation_rate"`
}

// Pattern is a feature-signature cluster with enough evidence to compare
// its citation rate against the baseline.
type Pattern struct {
	Signature       FeatureSignature `json:"feature_signature"`
	SignatureKey    string           `json:"signature_key"`
	EnginesObserved []Engine         `json:"engines_observed"`
	CitationRate    float64          `json:"citation_rate"`
	BaselineRate    float64          `json:"baseline_rate"`
	Deviation       float64          `json:"deviation"`
	SampleSize      int              `json:"sample_size"`
	DistinctDomains int              `json:"distinct_domains"`
	FirstObserved   time.Time        `json:"first_observed"`
	EngineRates     []EngineRate     `json:"engine_rates"`
}

// Strength is |deviation| x sample size, the presentation sort key.
func (p Pattern) Strength() float64 {
	return math.Abs(p.Deviation) * float64(p.SampleSize)
}

// Supports reports whether the pattern is positive evidence for its signature.
func (p Pattern) Supports(minDeviation float64) bool {
	return p.Deviation >= minDeviation && p.Deviation > 0
}

// EngineSpread is the difference between the highest and lowest per-engine rate.
// It is undefined when fewer than two engines observed the cluster.
func (p Pattern) EngineSpread() Measure {
	if len(p.EngineRates) < 2 {
		return Undefined()
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range p.EngineRates {
		lo = math.Min(lo, r.CitationRate)
		hi = math.Max(hi, r.CitationRate)
	}
	return Known(hi - lo)
}

// EnginePreference flags an engine where one content type dominates citations.
type EnginePreference struct {
	Engine      Engine  `json:"engine"`
	ContentType string  `json:"content_type"`
	Share       float64 `json:"share"`
	Citations   int     `json:"citations"`
	EngineTotal int     `json:"engine_total"`
}

// ExclusionKind names what was excluded from output.
type ExclusionKind string

// Exclusion kinds.
const (
	ExclusionCluster ExclusionKind = "cluster"
	ExclusionQuery   ExclusionKind = "query"
)

// Exclusion records a subject withheld from output for lack of evidence.
type Exclusion struct {
	Kind       ExclusionKind `json:"kind"`
	Subject    string        `json:"subject"`
	SampleSize int           `json:"sample_size"`
	Reason     string        `json:"reason"`
}

// Err returns the exclusion as an InsufficientDataError.
func (e Exclusion) Err() error {
	return &InsufficientDataError{Subject: e.Subject, Reason: e.Reason}
}

// Position and temporal thresholds.
const (
	// TopPositionMax is the lowest position still counted as a top position.
	TopPositionMax = 3

	// MinPositionTop is the number of top positions a domain and citation
	// type need before they form a position pattern.
	MinPositionTop = 2

	// MinTemporalDays is the number of observed days a temporal pattern needs.
	MinTemporalDays = 7

	// SpikeFactor multiplies the daily average to find spike days.
	SpikeFactor = 1.5

	// WeeklyVariationRatio is the busiest over quietest weekday ratio above
	// which a weekly rhythm is reported.
	WeeklyVariationRatio = 1.5
)

// PositionCount is the number of citations at one position.
type PositionCount struct {
	Position int `json:"position"`
	Count    int `json:"count"`
}

// PositionPattern is a domain and citation type that keeps landing in the
// top positions of an answer.
type PositionPattern struct {
	Domain       string          `json:"domain"`
	CitationType CitationType    `json:"citation_type"`
	Positioned   int             `json:"positioned"`
	TopPositions int             `json:"top_positions"`
	TopShare     float64         `json:"top_share"`
	AvgPosition  float64         `json:"avg_position"`
	Distribution []PositionCount `json:"distribution"`
}

// DayCount is the number of citations observed on one UTC day.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// TemporalPattern describes how citation volume moves from day to day.
type TemporalPattern struct {
	Days            int        `json:"days"`
	Citations       int        `json:"citations"`
	AvgDaily        float64    `json:"avg_daily"`
	PeakDaily       int        `json:"peak_daily"`
	Volatility      float64    `json:"volatility"`
	Spikes          []DayCount `json:"spikes"`
	BusiestWeekday  string     `json:"busiest_weekday"`
	QuietestWeekday string     `json:"quietest_weekday"`
	WeeklyVariation bool       `json:"weekly_variation"`
}
