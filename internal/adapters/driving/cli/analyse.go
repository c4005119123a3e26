package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

var analyseCmd = &cobra.Command{
	Use:     "analyse",
	Aliases: []string{"analyze"},
	Short:   "Run an analysis",
	Long: `Aggregate the stored citation events over a trailing window, detect
feature patterns, profile competitors and score content gaps. The result is
stored and can be inspected with the runs, gaps, patterns and recommend
commands.

Passing --window more than once runs one independent analysis per window
concurrently.`,
	Args: cobra.NoArgs,
	RunE: runAnalyse,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored analysis runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	f := analyseCmd.Flags()
	f.String("name", "", "label for the run")
	f.DurationSlice("window", nil, "window override, repeatable")
	f.String("as-of", "", "window end as RFC 3339 (default now)")
	f.StringSlice("query", nil, "restrict the run to these query ids")
	f.Bool("json", false, "output as JSON")

	runsCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(analyseCmd)
	rootCmd.AddCommand(runsCmd)
}

func runAnalyse(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errNoAnalysis
	}

	specs, err := runSpecs(cmd)
	if err != nil {
		return err
	}

	var results []*domain.RunResult
	if len(specs) == 1 {
		result, err := analysisService.Run(cmd.Context(), specs[0])
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		results = append(results, result)
	} else {
		results, err = analysisService.RunMany(cmd.Context(), specs)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if len(results) == 1 {
			return printJSON(cmd, results[0])
		}
		return printJSON(cmd, results)
	}

	st := stylesFor(cmd.OutOrStdout())
	for i, r := range results {
		if i > 0 {
			cmd.Println()
		}
		printRunSummary(cmd, st, r)
	}
	return nil
}

func runSpecs(cmd *cobra.Command) ([]domain.RunSpec, error) {
	f := cmd.Flags()
	name, _ := f.GetString("name")
	queries, _ := f.GetStringSlice("query")
	windows, err := f.GetDurationSlice("window")
	if err != nil {
		return nil, fmt.Errorf("getting window flag: %w", err)
	}

	var asOf time.Time
	if raw, _ := f.GetString("as-of"); raw != "" {
		asOf, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, &domain.ConfigurationError{Field: "as-of", Reason: err.Error()}
		}
	}

	base := domain.RunSpec{Name: name, AsOf: asOf, QueryIDs: queries}
	if len(windows) == 0 {
		return []domain.RunSpec{base}, nil
	}

	specs := make([]domain.RunSpec, 0, len(windows))
	for _, w := range windows {
		spec := base
		spec.Window = w
		if len(windows) > 1 {
			spec.Name = fmt.Sprintf("%s%s", prefix(name), w)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func prefix(name string) string {
	if name == "" {
		return "window-"
	}
	return name + "-"
}

func printRunSummary(cmd *cobra.Command, st *styles, r *domain.RunResult) {
	title := "Run " + r.ID
	if r.Name != "" {
		title += " (" + r.Name + ")"
	}
	cmd.Println(st.Title(title))
	cmd.Printf("Window: %s to %s\n", r.Window.Start().Format(time.RFC3339), r.Window.End.Format(time.RFC3339))
	cmd.Printf("Events: %d\n", r.Events)
	cmd.Printf("Patterns: %d, excluded: %d\n", len(r.Patterns), len(r.Exclusions))

	s := r.Summary
	cmd.Printf("Gaps: %d evaluated, %d unevaluated, mean score %s\n", s.Evaluated, s.Unevaluated, s.MeanScore)
	for _, tier := range []domain.PriorityTier{domain.TierHigh, domain.TierMedium, domain.TierLow} {
		cmd.Printf("  %s: %d\n", st.Tier(tier, string(tier)), s.ByTier[tier])
	}
	if len(s.TopOpportunities) > 0 {
		cmd.Println("Top opportunities:")
		for _, id := range s.TopOpportunities {
			if g, ok := r.Gap(id); ok {
				cmd.Printf("  %s  %s\n", st.Score(g.OpportunityScore, fmt.Sprintf("%.2f", g.OpportunityScore)), g.QueryText)
			}
		}
	}
	if len(s.QuickWins) > 0 {
		cmd.Printf("Quick wins: %d\n", len(s.QuickWins))
	}
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errNoAnalysis
	}

	runs, err := analysisService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, runs)
	}

	if len(runs) == 0 {
		cmd.Println("No analysis runs. Run 'citescope analyse' first.")
		return nil
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title("Analysis Runs"))
	for _, r := range runs {
		name := r.Name
		if name == "" {
			name = "-"
		}
		cmd.Printf("%s  %-16s  %s  events=%d gaps=%d patterns=%d recommendations=%d\n",
			r.ID, name, r.CreatedAt.Format(time.RFC3339), r.Events, r.Gaps, r.Patterns, r.Recommendations)
	}
	return nil
}
