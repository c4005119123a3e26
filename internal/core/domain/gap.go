package domain

// Factor is one of the fixed opportunity score components.
type Factor string

// Scoring factors.
const (
	FactorCompetitorStrength Factor = "competitor_strength"
	FactorSelfAbsence        Factor = "self_absence"
	FactorContentFeatureGap  Factor = "content_feature_gap"
	FactorQueryPriority      Factor = "query_priority"
)

// AllFactors returns the factors in canonical order.
func AllFactors() []Factor {
	return []Factor{
		FactorCompetitorStrength,
		FactorSelfAbsence,
		FactorContentFeatureGap,
		FactorQueryPriority,
	}
}

// FactorContribution is one auditable line of a gap's reasoning.
type FactorContribution struct {
	Factor       Factor  `json:"factor"`
	RawValue     float64 `json:"raw_value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Feature is a tracked content attribute compared between owner and competitors.
type Feature string

// Tracked features.
const (
	FeatureSchemaMarkup Feature = "schema_markup"
	FeatureWordCount    Feature = "word_count"
	FeatureFreshness    Feature = "freshness"
	FeatureContentType  Feature = "content_type"
)

// TrackedFeatures returns the tracked feature set in canonical order.
func TrackedFeatures() []Feature {
	return []Feature{
		FeatureSchemaMarkup,
		FeatureWordCount,
		FeatureFreshness,
		FeatureContentType,
	}
}

// FeatureEvidence is the owner-versus-competitor comparison of one feature.
type FeatureEvidence struct {
	Feature Feature `json:"feature"`

	// Coverage is the fraction of competitor citations carrying the feature.
	Coverage float64 `json:"coverage"`

	// Competitor and Owner describe the compared values ("median 1800", "72%").
	Competitor string `json:"competitor"`
	Owner      string `json:"owner"`

	// Present means the feature is held by a majority of competitor citations.
	Present bool `json:"present"`

	// Missing means it is present for competitors but absent or weak for the owner.
	Missing bool `json:"missing"`
}

// GapType classifies the competitive situation of a query.
type GapType string

// Gap types.
const (
	// GapAbsent: competitors are cited, the owner is not.
	GapAbsent GapType = "absent"

	// GapUncontested: only third-party sources are cited.
	GapUncontested GapType = "uncontested"

	// GapCompetitorDominated: owner is cited but competitors hold >= 60% of citations.
	GapCompetitorDominated GapType = "competitor_dominated"

	// GapUnderperforming: owner is cited but trails the top competitor.
	GapUnderperforming GapType = "underperforming"

	// GapLeading: owner matches or beats every competitor.
	GapLeading GapType = "leading"
)

// Effort is a coarse estimate of the work to close a gap.
type Effort string

// Effort levels.
const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// DomainCount pairs a domain with a citation count.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// ContentGap is the scored opportunity for one tracked query.
type ContentGap struct {
	QueryID          string               `json:"query_id"`
	QueryText        string               `json:"query_text"`
	Rank             int                  `json:"rank"`
	OpportunityScore float64              `json:"opportunity_score"`
	Reasoning        []FactorContribution `json:"reasoning"`

	LeadingCompetitorDomain *string           `json:"leading_competitor_domain"`
	MissingFeatures         []Feature         `json:"missing_features"`
	FeatureEvidence         []FeatureEvidence `json:"feature_evidence"`

	GapType          GapType           `json:"gap_type"`
	TotalCitations   int               `json:"total_citations"`
	OwnerCitations   int               `json:"owner_citations"`
	CompetingDomains []DomainCount     `json:"competing_domains"`
	TargetSignature  *FeatureSignature `json:"target_signature,omitempty"`

	SuggestedFormat string   `json:"suggested_format"`
	ContentAngles   []string `json:"content_angles"`
	Effort          Effort   `json:"effort"`

	// RelatedQueries are tracked query IDs sharing at least two terms with
	// this query, suitable for covering in the same piece of content.
	RelatedQueries []string `json:"related_queries"`
}

// Factor returns the reasoning line for f.
func (g ContentGap) Factor(f Factor) (FactorContribution, bool) {
	for _, r := range g.Reasoning {
		if r.Factor == f {
			return r, true
		}
	}
	return FactorContribution{}, false
}

// UnevaluatedQuery is a tracked query excluded from scoring for lack of evidence.
// It is distinct from a scored zero.
type UnevaluatedQuery struct {
	QueryID   string `json:"query_id"`
	QueryText string `json:"query_text"`
	Reason    string `json:"reason"`
}
