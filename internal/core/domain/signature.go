package domain

import "strings"

// WordCountBucket is the bucketed word count of cited content.
type WordCountBucket string

// Word count buckets.
const (
	WordsUnder500   WordCountBucket = "lt500"
	Words500To1500  WordCountBucket = "500-1500"
	Words1500To3000 WordCountBucket = "1500-3000"
	Words3000Plus   WordCountBucket = "3000+"
	WordsUnknown    WordCountBucket = "unknown"
)

// BucketWordCount assigns a word count to its bucket. Nil maps to WordsUnknown.
func BucketWordCount(n *int) WordCountBucket {
	switch {
	case n == nil:
		return WordsUnknown
	case *n < 500:
		return WordsUnder500
	case *n < 1500:
		return Words500To1500
	case *n < 3000:
		return Words1500To3000
	default:
		return Words3000Plus
	}
}

// FreshnessBucket is the bucketed content age.
type FreshnessBucket string

// Freshness buckets.
const (
	FreshWithin30Days FreshnessBucket = "fresh"  // <= 30 days
	FreshWithin180    FreshnessBucket = "recent" // 31-180 days
	FreshWithinYear   FreshnessBucket = "aging"  // 181-365 days
	FreshStale        FreshnessBucket = "stale"  // > 365 days
	FreshUnknown      FreshnessBucket = "unknown"
)

// BucketFreshness assigns a content age to its bucket. Nil maps to FreshUnknown.
func BucketFreshness(days *int) FreshnessBucket {
	switch {
	case days == nil:
		return FreshUnknown
	case *days <= 30:
		return FreshWithin30Days
	case *days <= 180:
		return FreshWithin180
	case *days <= 365:
		return FreshWithinYear
	default:
		return FreshStale
	}
}

// SchemaFlag is the tri-state schema markup attribute.
type SchemaFlag string

// Schema markup states.
const (
	SchemaPresent SchemaFlag = "schema"
	SchemaAbsent  SchemaFlag = "no_schema"
	SchemaUnknown SchemaFlag = "unknown"
)

// FlagSchema maps an optional schema attribute onto a SchemaFlag.
func FlagSchema(b *bool) SchemaFlag {
	switch {
	case b == nil:
		return SchemaUnknown
	case *b:
		return SchemaPresent
	default:
		return SchemaAbsent
	}
}

// UnknownContentType labels content with no content_type tag.
const UnknownContentType = "unknown"

// FeatureSignature is the clustering key for citations: a fixed, enumerated
// bucket per content attribute.
type FeatureSignature struct {
	ContentType string          `json:"content_type"`
	WordCount   WordCountBucket `json:"word_count"`
	Schema      SchemaFlag      `json:"schema_markup"`
	Freshness   FreshnessBucket `json:"freshness"`
}

// SignatureOf computes the feature signature of a feature record.
func SignatureOf(f ContentFeatures) FeatureSignature {
	return FeatureSignature{
		ContentType: NormaliseContentType(f.ContentType),
		WordCount:   BucketWordCount(f.WordCount),
		Schema:      FlagSchema(f.HasSchemaMarkup),
		Freshness:   BucketFreshness(f.FreshnessAgeDays),
	}
}

// NormaliseContentType lowercases a content type tag; empty maps to "unknown".
func NormaliseContentType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return UnknownContentType
	}
	return s
}

// IsUnknown reports whether no content attribute was observed at all.
func (s FeatureSignature) IsUnknown() bool {
	return s.ContentType == UnknownContentType &&
		s.WordCount == WordsUnknown &&
		s.Schema == SchemaUnknown &&
		s.Freshness == FreshUnknown
}

// Key returns the canonical string form "type|words|schema|freshness".
func (s FeatureSignature) Key() string {
	return s.ContentType + "|" + string(s.WordCount) + "|" + string(s.Schema) + "|" + string(s.Freshness)
}

// String implements fmt.Stringer.
func (s FeatureSignature) String() string {
	return s.Key()
}
