// Package cli implements the citescope command line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citescope/internal/core/ports/driving"
	"github.com/custodia-labs/citescope/internal/logger"
)

// Services holds the driving ports the commands use.
type Services struct {
	Ingest   driving.IngestService
	Analysis driving.AnalysisService
	Query    driving.QueryService
	Settings driving.SettingsService
}

// Bootstrap builds services for the given directories. The returned
// function releases them.
type Bootstrap func(configDir, dataDir string) (Services, func() error, error)

var (
	version = "dev"

	verbose   bool
	configDir string
	dataDir   string

	bootstrap Bootstrap
	release   func() error

	ingestService   driving.IngestService
	analysisService driving.AnalysisService
	queryService    driving.QueryService
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "citescope",
	Short: "Find content gaps in AI search citations",
	Long: `citescope ingests citation observations from AI answer engines
(AI overviews, featured snippets, Perplexity, Copilot and others), learns
which content features engines favour, and ranks the queries where
competitors are cited and you are not.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.citescope)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.citescope/data)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Configure injects services directly, bypassing the bootstrap.
func Configure(s Services) {
	ingestService = s.Ingest
	analysisService = s.Analysis
	queryService = s.Query
	settingsService = s.Settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())
	if analysisService != nil || bootstrap == nil || !needsServices(cmd) {
		return nil
	}
	services, closeFn, err := bootstrap(configDir, dataDir)
	if err != nil {
		return err
	}
	Configure(services)
	release = closeFn
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	logger.Sync()
	if release == nil {
		return nil
	}
	err := release()
	release = nil
	return err
}

// needsServices is false for commands that never touch the stores.
func needsServices(cmd *cobra.Command) bool {
	if cmd == versionCmd || cmd.Name() == "help" {
		return false
	}
	return cmd.Parent() == nil || cmd.Parent().Name() != "completion"
}

var (
	errNoIngest   = errors.New("ingest service not configured")
	errNoAnalysis = errors.New("analysis service not configured")
	errNoQuery    = errors.New("query service not configured")
	errNoSettings = errors.New("settings service not configured")
)
