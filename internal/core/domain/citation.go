package domain

import (
	"strings"
	"time"
)

// CitationType is the answer surface a citation appeared in.
type CitationType string

// Available citation types.
const (
	CitationAIOverview      CitationType = "ai_overview"
	CitationFeaturedSnippet CitationType = "featured_snippet"
	CitationPeopleAlsoAsk   CitationType = "people_also_ask"
	CitationKnowledgePanel  CitationType = "knowledge_panel"
	CitationDirectAnswer    CitationType = "direct_answer"
	CitationOther           CitationType = "other"
)

// AllCitationTypes returns the citation types in canonical order.
func AllCitationTypes() []CitationType {
	return []CitationType{
		CitationAIOverview,
		CitationFeaturedSnippet,
		CitationPeopleAlsoAsk,
		CitationKnowledgePanel,
		CitationDirectAnswer,
		CitationOther,
	}
}

// IsValid returns true if the citation type is recognised.
func (t CitationType) IsValid() bool {
	switch t {
	case CitationAIOverview, CitationFeaturedSnippet, CitationPeopleAlsoAsk,
		CitationKnowledgePanel, CitationDirectAnswer, CitationOther:
		return true
	default:
		return false
	}
}

// ParseCitationType maps a raw tag onto a citation type.
// Unknown or empty tags map to CitationOther.
func ParseCitationType(s string) CitationType {
	t := CitationType(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return CitationOther
}

// ContentFeatures are the structured attributes of cited content.
// Nil pointers mean the attribute was not observed.
type ContentFeatures struct {
	WordCount        *int   `json:"word_count,omitempty"`
	HasSchemaMarkup  *bool  `json:"has_schema_markup,omitempty"`
	FreshnessAgeDays *int   `json:"freshness_age_days,omitempty"`
	ContentType      string `json:"content_type,omitempty"`
}

// Completeness counts non-null feature fields.
func (f ContentFeatures) Completeness() int {
	n := 0
	if f.WordCount != nil {
		n++
	}
	if f.HasSchemaMarkup != nil {
		n++
	}
	if f.FreshnessAgeDays != nil {
		n++
	}
	if f.ContentType != "" {
		n++
	}
	return n
}

// CitationEvent is an immutable, normalised observation of a cited URL.
type CitationEvent struct {
	QueryID      string          `json:"query_id"`
	Engine       Engine          `json:"engine"`
	Domain       string          `json:"domain"`
	URL          string          `json:"url"`
	CitationType CitationType    `json:"citation_type"`
	Position     *int            `json:"position,omitempty"`
	ObservedAt   time.Time       `json:"observed_at"`
	Features     ContentFeatures `json:"content_features"`
}

// Key returns the uniqueness key of the event for a collection interval.
func (e CitationEvent) Key(interval time.Duration) EventKey {
	return EventKey{
		QueryID:  e.QueryID,
		Engine:   e.Engine,
		URL:      e.URL,
		Interval: IntervalStart(e.ObservedAt, interval),
	}
}

// EventKey is the uniqueness key (query, engine, url, truncated observation time).
type EventKey struct {
	QueryID  string
	Engine   Engine
	URL      string
	Interval time.Time
}

// IntervalStart truncates t to the start of its collection interval in UTC.
// A non-positive interval leaves t untouched apart from the UTC conversion.
func IntervalStart(t time.Time, interval time.Duration) time.Time {
	t = t.UTC()
	if interval <= 0 {
		return t
	}
	return t.Truncate(interval)
}
