package domain

// PriorityTier is the coarse priority of an action item.
type PriorityTier string

// Priority tiers.
const (
	TierHigh   PriorityTier = "high"
	TierMedium PriorityTier = "medium"
	TierLow    PriorityTier = "low"
)

// Tier thresholds on opportunity score.
const (
	HighTierThreshold   = 0.8
	MediumTierThreshold = 0.5
)

// TierForScore maps an opportunity score onto a tier.
func TierForScore(score float64) PriorityTier {
	switch {
	case score >= HighTierThreshold:
		return TierHigh
	case score >= MediumTierThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Order returns the sort position of the tier (high first).
func (t PriorityTier) Order() int {
	switch t {
	case TierHigh:
		return 0
	case TierMedium:
		return 1
	default:
		return 2
	}
}

// Promote returns the next tier up, capped at high.
func (t PriorityTier) Promote() PriorityTier {
	switch t {
	case TierLow:
		return TierMedium
	default:
		return TierHigh
	}
}

// IsValid returns true if the tier is recognised.
func (t PriorityTier) IsValid() bool {
	return t == TierHigh || t == TierMedium || t == TierLow
}

// ActionType names what a recommendation asks for.
type ActionType string

// Action types.
const (
	ActionCreateContent   ActionType = "create_content"
	ActionOptimiseContent ActionType = "optimise_content"
	ActionDefendPosition  ActionType = "defend_position"
)

// Recommendation is a prioritised action item derived from a gap.
type Recommendation struct {
	ID                string       `json:"id"`
	QueryID           string       `json:"query_id"`
	QueryText         string       `json:"query_text"`
	Tier              PriorityTier `json:"priority"`
	Score             float64      `json:"score"`
	Feature           Feature      `json:"feature,omitempty"`
	Action            ActionType   `json:"action"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Corroborated      bool         `json:"corroborated"`
	PatternSignature  string       `json:"pattern_signature,omitempty"`
	LeadingCompetitor string       `json:"leading_competitor,omitempty"`
	Effort            Effort       `json:"effort"`
}
