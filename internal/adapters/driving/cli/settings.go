package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage analysis settings",
	Long: `View and configure the analysis window, pattern thresholds, worker
count and opportunity score weights.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set an analysis setting",
	Long: `Set a single analysis setting.

Available keys:
  window                 - trailing aggregation window (e.g. 168h)
  collection_interval    - dedup interval for observations (e.g. 1h)
  min_cluster_size       - minimum sample size for a pattern
  min_support_deviation  - deviation a pattern needs to corroborate a gap
  workers                - aggregation fan-out
  engines                - extra engine tags, comma separated

Values that start with a dash, such as -1h, are read as values rather
than flags and rejected by validation.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWeightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Set opportunity score weights",
	Long: `Set the factor weights of the opportunity score. Unset flags keep
their current value. The four weights must sum to 1.0.`,
	Args: cobra.NoArgs,
	RunE: runSettingsWeights,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	Long:  `Restore the default analysis settings. The competitor set is kept.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	settingsShowCmd.Flags().Bool("json", false, "output as JSON")
	settingsCmd.Flags().Bool("json", false, "output as JSON")

	f := settingsWeightsCmd.Flags()
	f.Float64("competitor-strength", 0, "weight of competitor strength")
	f.Float64("self-absence", 0, "weight of self absence")
	f.Float64("content-feature-gap", 0, "weight of the content feature gap")
	f.Float64("query-priority", 0, "weight of query priority")

	settingsResetCmd.Flags().BoolP("yes", "y", false, "skip confirmation")

	// KEY comes first, so everything after it is positional.
	settingsSetCmd.Flags().SetInterspersed(false)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWeightsCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, settings)
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title("Current Settings"))
	cmd.Println()

	cmd.Println("[Analysis]")
	cmd.Printf("  Window: %s\n", settings.Window)
	cmd.Printf("  Collection interval: %s\n", settings.CollectionInterval)
	cmd.Printf("  Min cluster size: %d\n", settings.MinClusterSize)
	cmd.Printf("  Min support deviation: %.2f\n", settings.MinSupportDeviation)
	cmd.Printf("  Workers: %d\n", settings.Workers)
	cmd.Println()

	cmd.Println("[Weights]")
	for _, f := range domain.AllFactors() {
		cmd.Printf("  %-20s %.2f\n", f, settings.Weights.Of(f))
	}
	cmd.Println()

	cmd.Println("[Engines]")
	registry := settings.EngineRegistry()
	for _, e := range registry.Names() {
		cmd.Printf("  %-22s %s\n", e, registry.Description(e))
	}
	cmd.Println()

	cmd.Println("[Competitors]")
	if len(settings.Competitors) == 0 {
		cmd.Println(st.Muted("  (none)"))
	}
	for _, d := range settings.Competitors {
		cmd.Printf("  %s\n", d)
	}
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'citescope settings reset' to restore defaults.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := applySetting(settings, args[0], args[1]); err != nil {
		return err
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("%s set to %s\n", args[0], args[1])
	return nil
}

func applySetting(s *domain.AnalysisSettings, key, value string) error {
	invalid := func(err error) error {
		return &domain.ConfigurationError{Field: key, Reason: err.Error()}
	}
	switch key {
	case "window", "collection_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return invalid(err)
		}
		if key == "window" {
			s.Window = d
		} else {
			s.CollectionInterval = d
		}
	case "min_cluster_size", "workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return invalid(err)
		}
		if key == "workers" {
			s.Workers = n
		} else {
			s.MinClusterSize = n
		}
	case "min_support_deviation":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return invalid(err)
		}
		s.MinSupportDeviation = v
	case "engines":
		s.ExtraEngines = splitList(value)
	default:
		return &domain.ConfigurationError{Field: key, Reason: "unknown setting"}
	}
	return nil
}

func runSettingsWeights(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	w := settings.Weights
	flags := map[string]*float64{
		"competitor-strength": &w.CompetitorStrength,
		"self-absence":        &w.SelfAbsence,
		"content-feature-gap": &w.ContentFeatureGap,
		"query-priority":      &w.QueryPriority,
	}
	for name, target := range flags {
		if cmd.Flags().Changed(name) {
			v, err := cmd.Flags().GetFloat64(name)
			if err != nil {
				return fmt.Errorf("getting %s flag: %w", name, err)
			}
			*target = v
		}
	}

	if err := settingsService.SetWeights(w); err != nil {
		return fmt.Errorf("failed to set weights: %w", err)
	}

	for _, f := range domain.AllFactors() {
		cmd.Printf("%-20s %.2f\n", f, w.Of(f))
	}
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		cmd.Print("Restore default settings? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		if answer := strings.ToLower(readLine(reader)); answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	current, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	defaults := settingsService.GetDefaults()
	defaults.Competitors = current.Competitors
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Settings restored to defaults.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
