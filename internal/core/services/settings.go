package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/ports/driven"
	"github.com/custodia-labs/citescope/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyWindow              = "analysis.window"
	keyCollectionInterval  = "analysis.collection_interval"
	keyMinClusterSize      = "analysis.min_cluster_size"
	keyMinSupportDeviation = "analysis.min_support_deviation"
	keyWorkers             = "analysis.workers"
	keyWeightPrefix        = "weights."
	keyExtraEngines        = "engines.extra"
	keyCompetitors         = "competitors.domains"
)

// SettingsService manages analysis settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get overlays stored values on the defaults. Unparsable durations are
// reported as configuration errors rather than replaced by defaults.
func (s *SettingsService) Get() (*domain.AnalysisSettings, error) {
	settings := domain.DefaultAnalysisSettings()

	var err error
	if settings.Window, err = s.getDuration(keyWindow, settings.Window); err != nil {
		return nil, err
	}
	if settings.CollectionInterval, err = s.getDuration(keyCollectionInterval, settings.CollectionInterval); err != nil {
		return nil, err
	}
	settings.MinClusterSize = s.getInt(keyMinClusterSize, settings.MinClusterSize)
	settings.MinSupportDeviation = s.getFloat(keyMinSupportDeviation, settings.MinSupportDeviation)
	settings.Workers = s.getInt(keyWorkers, settings.Workers)

	w := &settings.Weights
	w.CompetitorStrength = s.getFloat(weightKey(domain.FactorCompetitorStrength), w.CompetitorStrength)
	w.SelfAbsence = s.getFloat(weightKey(domain.FactorSelfAbsence), w.SelfAbsence)
	w.ContentFeatureGap = s.getFloat(weightKey(domain.FactorContentFeatureGap), w.ContentFeatureGap)
	w.QueryPriority = s.getFloat(weightKey(domain.FactorQueryPriority), w.QueryPriority)

	settings.ExtraEngines = s.configStore.GetStringSlice(keyExtraEngines)
	settings.Competitors = domain.CanonicalDomains(s.configStore.GetStringSlice(keyCompetitors))

	return &settings, nil
}

// Save validates settings and persists every key.
func (s *SettingsService) Save(settings *domain.AnalysisSettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyWindow, settings.Window.String()},
		{keyCollectionInterval, settings.CollectionInterval.String()},
		{keyMinClusterSize, settings.MinClusterSize},
		{keyMinSupportDeviation, settings.MinSupportDeviation},
		{keyWorkers, settings.Workers},
		{keyExtraEngines, nonNil(settings.ExtraEngines)},
		{keyCompetitors, nonNil(domain.CanonicalDomains(settings.Competitors))},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return s.saveWeights(settings.Weights)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AnalysisSettings {
	return domain.DefaultAnalysisSettings()
}

// SetWeights validates and stores scoring weights.
func (s *SettingsService) SetWeights(weights domain.Weights) error {
	if err := weights.Validate(); err != nil {
		return err
	}
	return s.saveWeights(weights)
}

// AddCompetitors adds domains to the competitor set.
func (s *SettingsService) AddCompetitors(domains ...string) error {
	added := domain.CanonicalDomains(domains)
	if len(added) == 0 {
		return &domain.ConfigurationError{Field: keyCompetitors, Reason: "no domains given"}
	}
	current := domain.CanonicalDomains(s.configStore.GetStringSlice(keyCompetitors))
	for _, d := range added {
		if !slices.Contains(current, d) {
			current = append(current, d)
		}
	}
	slices.Sort(current)
	return s.configStore.Set(keyCompetitors, current)
}

// RemoveCompetitors removes domains from the competitor set.
func (s *SettingsService) RemoveCompetitors(domains ...string) error {
	drop := domain.NewCompetitorSet(domains...)
	current := domain.CanonicalDomains(s.configStore.GetStringSlice(keyCompetitors))
	kept := make([]string, 0, len(current))
	for _, d := range current {
		if !drop.Has(d) {
			kept = append(kept, d)
		}
	}
	return s.configStore.Set(keyCompetitors, kept)
}

func (s *SettingsService) saveWeights(w domain.Weights) error {
	for _, f := range domain.AllFactors() {
		if err := s.configStore.Set(weightKey(f), w.Of(f)); err != nil {
			return fmt.Errorf("save %s: %w", weightKey(f), err)
		}
	}
	return nil
}

func weightKey(f domain.Factor) string {
	return keyWeightPrefix + string(f)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, &domain.ConfigurationError{Field: key, Reason: fmt.Sprintf("invalid duration %q", val)}
	}
	return d, nil
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

// getFloat keeps an explicit zero, which is a legitimate weight.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
