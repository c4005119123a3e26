package domain

import "time"

// RawCitation is a citation record as delivered by a collector.
// It is the normaliser's input; nothing about it has been validated yet.
type RawCitation struct {
	// QueryID references a TrackedQuery.
	QueryID string `json:"query_id"`

	// Engine is the free-form engine tag.
	Engine string `json:"engine"`

	// Domain is optional; derived from URL when empty.
	Domain string `json:"domain,omitempty"`

	// URL is the cited address.
	URL string `json:"url"`

	// CitationType is the free-form answer surface tag.
	CitationType string `json:"citation_type,omitempty"`

	// Position is the 1-based ordinal inside the answer, when known.
	Position *int `json:"position,omitempty"`

	// ObservedAt is when the collector saw the citation.
	ObservedAt time.Time `json:"observed_at"`

	// Content features, each optional.
	WordCount        *int   `json:"word_count,omitempty"`
	HasSchemaMarkup  *bool  `json:"has_schema_markup,omitempty"`
	FreshnessAgeDays *int   `json:"freshness_age_days,omitempty"`
	ContentType      string `json:"content_type,omitempty"`
}
