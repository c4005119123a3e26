package driving

import "github.com/custodia-labs/citescope/internal/core/domain"

// SettingsService manages analysis settings.
type SettingsService interface {
	// Get retrieves current settings overlaid on the defaults.
	Get() (*domain.AnalysisSettings, error)

	// Save validates and persists settings.
	Save(settings *domain.AnalysisSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AnalysisSettings

	// SetWeights validates and stores scoring weights.
	SetWeights(weights domain.Weights) error

	// AddCompetitors adds domains to the competitor set.
	AddCompetitors(domains ...string) error

	// RemoveCompetitors removes domains from the competitor set.
	RemoveCompetitors(domains ...string) error
}
