package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show citation patterns",
	Long: `Show the feature signatures cited more or less often than the baseline,
ordered by strength, along with engine content-type preferences and the
clusters excluded for lack of evidence.`,
	Args: cobra.NoArgs,
	RunE: runPatterns,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Show competitor profiles",
	Long:  `Show how the owner and competitor domains were cited in a run's window.`,
	Args:  cobra.NoArgs,
	RunE:  runProfiles,
}

func init() {
	patternsCmd.Flags().String("run", "", "run id (default latest)")
	patternsCmd.Flags().Bool("json", false, "output as JSON")
	profilesCmd.Flags().String("run", "", "run id (default latest)")
	profilesCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(profilesCmd)
}

type patternsOutput struct {
	Patterns    []domain.Pattern          `json:"patterns"`
	Preferences []domain.EnginePreference `json:"engine_preferences"`
	Positions   []domain.PositionPattern  `json:"position_patterns"`
	Temporal    *domain.TemporalPattern   `json:"temporal,omitempty"`
	Exclusions  []domain.Exclusion        `json:"exclusions"`
}

func runPatterns(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errNoAnalysis
	}

	id, _ := cmd.Flags().GetString("run")
	run, err := loadRun(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	patterns := append([]domain.Pattern(nil), run.Patterns...)
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Strength() > patterns[j].Strength()
	})

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, patternsOutput{
			Patterns:    patterns,
			Preferences: run.Preferences,
			Positions:   run.Positions,
			Temporal:    run.Temporal,
			Exclusions:  run.Exclusions,
		})
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title("Patterns"))
	if len(patterns) == 0 {
		cmd.Println(st.Muted("No cluster met the minimum sample size."))
	}
	for _, p := range patterns {
		cmd.Printf("%+.2f  rate %.2f vs %.2f  n=%-4d domains=%-3d spread %s  %s\n",
			p.Deviation, p.CitationRate, p.BaselineRate, p.SampleSize, p.DistinctDomains,
			p.EngineSpread(), p.Signature)
	}

	if len(run.Preferences) > 0 {
		cmd.Println()
		cmd.Println(st.Title("Engine Preferences"))
		for _, p := range run.Preferences {
			cmd.Printf("%-22s %-12s %3.0f%% (%d of %d)\n", p.Engine, p.ContentType, p.Share*100, p.Citations, p.EngineTotal)
		}
	}

	if len(run.Positions) > 0 {
		cmd.Println()
		cmd.Println(st.Title("Top Positions"))
		for _, p := range run.Positions {
			cmd.Printf("%-28s %-16s top %d of %d (%3.0f%%)  avg %.1f\n",
				p.Domain, p.CitationType, p.TopPositions, p.Positioned, p.TopShare*100, p.AvgPosition)
		}
	}

	if tp := run.Temporal; tp != nil {
		cmd.Println()
		cmd.Println(st.Title("Daily Activity"))
		cmd.Printf("%d days, %.1f citations/day, peak %d, volatility %.2f\n",
			tp.Days, tp.AvgDaily, tp.PeakDaily, tp.Volatility)
		for _, d := range tp.Spikes {
			cmd.Printf("  spike %s: %d\n", d.Day.Format(time.DateOnly), d.Count)
		}
		if tp.WeeklyVariation {
			cmd.Printf("busiest on %s, quietest on %s\n", tp.BusiestWeekday, tp.QuietestWeekday)
		}
	}

	if len(run.Exclusions) > 0 {
		cmd.Println()
		cmd.Println(st.Muted(fmt.Sprintf("%d excluded:", len(run.Exclusions))))
		for _, e := range run.Exclusions {
			cmd.Println(st.Muted(fmt.Sprintf("  %s %s (n=%d): %s", e.Kind, e.Subject, e.SampleSize, e.Reason)))
		}
	}
	return nil
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errNoAnalysis
	}

	id, _ := cmd.Flags().GetString("run")
	run, err := loadRun(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, run.Profiles)
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title("Domain Profiles"))
	if len(run.Profiles) == 0 {
		cmd.Println(st.Muted("No owner or competitor citations in the window."))
	}
	for _, p := range run.Profiles {
		cmd.Printf("%-28s %-10s citations %4d (prev %4d) %s  queries %d  avg position %s\n",
			p.Domain, p.Role, p.Citations, p.PreviousCitations, st.Trend(p.Trend), p.QueriesCited, p.AvgPosition)
	}
	return nil
}
