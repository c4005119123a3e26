package domain

import "time"

// Snapshot is the immutable input of a single engine run.
type Snapshot struct {
	// Records are raw records to normalise in this run.
	Records []RawCitation

	// Events are previously normalised events. They take precedence over
	// duplicate records.
	Events []CitationEvent

	// Queries is the tracked query set.
	Queries []TrackedQuery

	// AsOf is the end of the window.
	AsOf time.Time
}

// RunSpec describes one independent run.
type RunSpec struct {
	// Name labels the run in listings.
	Name string `json:"name"`

	// Window overrides the configured window when non-zero.
	Window time.Duration `json:"window,omitempty"`

	// AsOf is the window end; zero means now.
	AsOf time.Time `json:"as_of,omitempty"`

	// QueryIDs restricts the run to a subset of tracked queries.
	QueryIDs []string `json:"query_ids,omitempty"`
}

// NormalisationReport accounts for every raw record in a batch.
type NormalisationReport struct {
	Received   int               `json:"received"`
	Accepted   int               `json:"accepted"`
	Duplicates int               `json:"duplicates"`
	Known      int               `json:"already_known"`
	Rejected   []ValidationError `json:"rejected"`

	// Untracked counts stored events dropped because their query is no
	// longer tracked.
	Untracked int `json:"untracked_events"`
}

// Orphaned returns the number of records rejected for an untracked query.
func (r NormalisationReport) Orphaned() int {
	n := 0
	for _, e := range r.Rejected {
		if e.Orphaned {
			n++
		}
	}
	return n
}

// GapSummary is the headline view of a run's gaps.
type GapSummary struct {
	Evaluated        int                  `json:"evaluated"`
	Unevaluated      int                  `json:"unevaluated"`
	MeanScore        Measure              `json:"mean_score"`
	ByTier           map[PriorityTier]int `json:"by_tier"`
	ByType           map[GapType]int      `json:"by_type"`
	TopOpportunities []string             `json:"top_opportunities"`
	QuickWins        []string             `json:"quick_wins"`
}

// Quick win thresholds.
const (
	QuickWinScore     = 0.6
	TopOpportunityMax = 5
)

// RunResult is the complete, internally consistent output of one run.
type RunResult struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Window    Window           `json:"window"`
	Settings  AnalysisSettings `json:"settings"`
	CreatedAt time.Time        `json:"created_at"`

	Normalisation NormalisationReport `json:"normalisation"`
	Events        int                 `json:"events"`

	Aggregates  []AggregateWindow   `json:"aggregates"`
	Profiles    []CompetitorProfile `json:"profiles"`
	Patterns    []Pattern           `json:"patterns"`
	Preferences []EnginePreference  `json:"engine_preferences"`
	Positions   []PositionPattern   `json:"position_patterns"`
	Temporal    *TemporalPattern    `json:"temporal,omitempty"`
	Exclusions  []Exclusion         `json:"exclusions"`

	Gaps            []ContentGap       `json:"gaps"`
	Unevaluated     []UnevaluatedQuery `json:"unevaluated"`
	Recommendations []Recommendation   `json:"recommendations"`
	Summary         GapSummary         `json:"summary"`
}

// Gap returns the gap for a query.
func (r *RunResult) Gap(queryID string) (ContentGap, bool) {
	for _, g := range r.Gaps {
		if g.QueryID == queryID {
			return g, true
		}
	}
	return ContentGap{}, false
}

// RunInfo is the listing view of a stored run.
type RunInfo struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	WindowEnd       time.Time `json:"window_end"`
	CreatedAt       time.Time `json:"created_at"`
	Events          int       `json:"events"`
	Gaps            int       `json:"gaps"`
	Patterns        int       `json:"patterns"`
	Recommendations int       `json:"recommendations"`
}

// Info returns the listing view of the result.
func (r *RunResult) Info() RunInfo {
	return RunInfo{
		ID:              r.ID,
		Name:            r.Name,
		WindowEnd:       r.Window.End,
		CreatedAt:       r.CreatedAt,
		Events:          r.Events,
		Gaps:            len(r.Gaps),
		Patterns:        len(r.Patterns),
		Recommendations: len(r.Recommendations),
	}
}
