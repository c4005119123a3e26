package gaps

import (
	"strings"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// maxAngles caps the content angle suggestions per gap.
const maxAngles = 5

// containsAny reports whether s contains any of the words.
func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// SuggestFormat picks a content format from the query wording.
func SuggestFormat(query string) string {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "how to", "how do", "tutorial", "guide", "step"):
		return "tutorial_guide"
	case containsAny(q, "what is", "definition", "meaning"):
		return "explainer_article"
	case containsAny(q, "best", "top", "review", "comparison", " vs"):
		return "comparison_review"
	case containsAny(q, "tool", "calculator", "generator"):
		return "interactive_tool"
	case strings.Contains(q, "?") || containsAny(q, "why", "when", "where"):
		return "faq_article"
	default:
		return "comprehensive_article"
	}
}

// ContentAngles suggests angles for the query, adjusted for the competitive situation.
func ContentAngles(query string, gapType domain.GapType) []string {
	q := strings.ToLower(query)
	var angles []string
	switch {
	case strings.Contains(q, "how"):
		angles = append(angles,
			"Step-by-step tutorial with screenshots",
			"Video walkthrough with examples",
			"Common mistakes to avoid",
		)
	case strings.Contains(q, "what"):
		angles = append(angles,
			"Comprehensive definition with examples",
			"Visual explanation",
			"Comparison with similar concepts",
		)
	case strings.Contains(q, "best"):
		angles = append(angles,
			"Data-driven comparison with pros and cons",
			"Aggregated user reviews",
			"Expert recommendations with reasoning",
		)
	}

	switch gapType {
	case domain.GapUnderperforming:
		angles = append(angles,
			"More detailed analysis than the cited sources",
			"Recent data and updated information",
			"Original research or case studies",
		)
	case domain.GapCompetitorDominated:
		angles = append(angles,
			"Unique perspective the cited sources lack",
			"First-hand experience or case study",
			"Interactive elements or tools",
		)
	case domain.GapUncontested:
		angles = append(angles, "Authoritative resource covering related questions")
	}

	if len(angles) == 0 {
		angles = append(angles, "Comprehensive guide answering the query directly")
	}
	if len(angles) > maxAngles {
		angles = angles[:maxAngles]
	}
	return angles
}

// EstimateEffort grades the work to close a gap from the query wording.
// Displacing dominant competitors is always high effort.
func EstimateEffort(query string, gapType domain.GapType) domain.Effort {
	if gapType == domain.GapCompetitorDominated {
		return domain.EffortHigh
	}
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "api", "code", "programming", "technical", "advanced", "enterprise"):
		return domain.EffortHigh
	case containsAny(q, "best", "comparison", "review", " vs", "analysis"):
		return domain.EffortHigh
	case containsAny(q, "how to", "tutorial", "guide", "step"):
		return domain.EffortMedium
	case containsAny(q, "what is", "definition", "meaning"):
		return domain.EffortLow
	default:
		return domain.EffortMedium
	}
}
