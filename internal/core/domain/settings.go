package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const unknownDescription = "Unknown"

// Default analysis settings.
const (
	DefaultCollectionInterval  = time.Hour
	DefaultMinSupportDeviation = 0.1
	DefaultWorkers             = 4

	// EnginePreferenceShare is the content-type share above which an engine
	// is reported as preferring that content type.
	EnginePreferenceShare = 0.6

	// WeightTolerance is the allowed distance of the weight sum from 1.
	WeightTolerance = 1e-6
)

// Weights are the opportunity score factor weights.
type Weights struct {
	CompetitorStrength float64 `json:"competitor_strength"`
	SelfAbsence        float64 `json:"self_absence"`
	ContentFeatureGap  float64 `json:"content_feature_gap"`
	QueryPriority      float64 `json:"query_priority"`
}

// DefaultWeights returns the default factor weights.
func DefaultWeights() Weights {
	return Weights{
		CompetitorStrength: 0.35,
		SelfAbsence:        0.30,
		ContentFeatureGap:  0.20,
		QueryPriority:      0.15,
	}
}

// Of returns the weight for a factor.
func (w Weights) Of(f Factor) float64 {
	switch f {
	case FactorCompetitorStrength:
		return w.CompetitorStrength
	case FactorSelfAbsence:
		return w.SelfAbsence
	case FactorContentFeatureGap:
		return w.ContentFeatureGap
	case FactorQueryPriority:
		return w.QueryPriority
	default:
		return 0
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.CompetitorStrength + w.SelfAbsence + w.ContentFeatureGap + w.QueryPriority
}

// Validate checks every weight is a finite non-negative number and that they sum to 1.
func (w Weights) Validate() error {
	var errs []error
	for _, f := range AllFactors() {
		v := w.Of(f)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			errs = append(errs, &ConfigurationError{
				Field:  "weights." + string(f),
				Reason: fmt.Sprintf("must be a non-negative number, got %v", v),
			})
		}
	}
	if len(errs) == 0 && math.Abs(w.Sum()-1) > WeightTolerance {
		errs = append(errs, &ConfigurationError{
			Field:  "weights",
			Reason: fmt.Sprintf("must sum to 1.0, got %.6f", w.Sum()),
		})
	}
	return errors.Join(errs...)
}

// AnalysisSettings configures an engine run.
type AnalysisSettings struct {
	// Window is the trailing aggregation span.
	Window time.Duration `json:"window"`

	// CollectionInterval is the dedup truncation interval for observed_at.
	CollectionInterval time.Duration `json:"collection_interval"`

	// MinClusterSize is the minimum sample size for a pattern.
	MinClusterSize int `json:"min_cluster_size"`

	// MinSupportDeviation is the deviation a pattern needs to corroborate a gap.
	MinSupportDeviation float64 `json:"min_support_deviation"`

	// Workers bounds the aggregation fan-out.
	Workers int `json:"workers"`

	Weights Weights `json:"weights"`

	// ExtraEngines are registered in addition to the built-in engines.
	ExtraEngines []string `json:"extra_engines"`

	// Competitors are the competitor domains.
	Competitors []string `json:"competitors"`
}

// DefaultAnalysisSettings returns the documented defaults.
func DefaultAnalysisSettings() AnalysisSettings {
	return AnalysisSettings{
		Window:              DefaultWindow,
		CollectionInterval:  DefaultCollectionInterval,
		MinClusterSize:      DefaultMinClusterSize,
		MinSupportDeviation: DefaultMinSupportDeviation,
		Workers:             DefaultWorkers,
		Weights:             DefaultWeights(),
	}
}

// CompetitorSet returns the configured competitors as a set.
func (s AnalysisSettings) CompetitorSet() CompetitorSet {
	return NewCompetitorSet(s.Competitors...)
}

// EngineRegistry returns a registry with the built-in and extra engines.
func (s AnalysisSettings) EngineRegistry() *EngineRegistry {
	extra := make([]Engine, 0, len(s.ExtraEngines))
	for _, e := range s.ExtraEngines {
		extra = append(extra, ParseEngine(e))
	}
	return NewEngineRegistry(extra...)
}

// Validate returns every configuration problem joined into one error.
func (s AnalysisSettings) Validate() error {
	var errs []error
	if s.Window <= 0 {
		errs = append(errs, &ConfigurationError{Field: "analysis.window", Reason: "must be positive"})
	}
	if s.CollectionInterval <= 0 {
		errs = append(errs, &ConfigurationError{Field: "analysis.collection_interval", Reason: "must be positive"})
	}
	if s.MinClusterSize < 1 {
		errs = append(errs, &ConfigurationError{Field: "analysis.min_cluster_size", Reason: "must be at least 1"})
	}
	if math.IsNaN(s.MinSupportDeviation) || s.MinSupportDeviation < 0 || s.MinSupportDeviation > MaxDeviation {
		errs = append(errs, &ConfigurationError{
			Field:  "analysis.min_support_deviation",
			Reason: fmt.Sprintf("must be within [0, %v]", MaxDeviation),
		})
	}
	if s.Workers < 1 {
		errs = append(errs, &ConfigurationError{Field: "analysis.workers", Reason: "must be at least 1"})
	}
	if err := s.Weights.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateQueries checks the tracked query set against the competitor set.
// Overlapping owner and competitor domains are rejected rather than given precedence.
func ValidateQueries(queries []TrackedQuery, competitors CompetitorSet) error {
	var errs []error
	seen := make(map[string]bool, len(queries))
	for _, q := range queries {
		if q.ID == "" {
			errs = append(errs, &ConfigurationError{Field: "queries.id", Reason: "must not be empty"})
			continue
		}
		if seen[q.ID] {
			errs = append(errs, &ConfigurationError{
				Field:  "queries." + q.ID,
				Reason: "duplicate query id",
			})
		}
		seen[q.ID] = true

		if p := q.PriorityWeight; math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			errs = append(errs, &ConfigurationError{
				Field:  "queries." + q.ID + ".priority_weight",
				Reason: fmt.Sprintf("must be positive, got %v", p),
			})
		}
		for _, d := range CanonicalDomains(q.OwnerDomains) {
			if competitors.Has(d) {
				errs = append(errs, &ConfigurationError{
					Field:  "queries." + q.ID + ".owner_domains",
					Reason: fmt.Sprintf("%s is also a competitor", d),
				})
			}
		}
	}
	return errors.Join(errs...)
}
