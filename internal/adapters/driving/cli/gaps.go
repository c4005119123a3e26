package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Show ranked content gaps",
	Long: `Show the content gaps of an analysis run, ranked by opportunity score.

Use --explain to print the factor contributions, feature evidence and the
suggested content for each gap.`,
	Args: cobra.NoArgs,
	RunE: runGaps,
}

func init() {
	f := gapsCmd.Flags()
	f.String("run", "", "run id (default latest)")
	f.IntP("limit", "n", 0, "maximum number of gaps (0 = all)")
	f.String("type", "", "only show gaps of this type")
	f.Bool("explain", false, "show the reasoning behind each score")
	f.Bool("json", false, "output as JSON")
	rootCmd.AddCommand(gapsCmd)
}

func loadRun(ctx context.Context, id string) (*domain.RunResult, error) {
	if id == "" {
		run, err := analysisService.Latest(ctx)
		if errors.Is(err, domain.ErrNoRuns) {
			return nil, fmt.Errorf("%w: run 'citescope analyse' first", err)
		}
		return run, err
	}
	return analysisService.Get(ctx, id)
}

func runGaps(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errNoAnalysis
	}

	id, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")
	gapType, _ := cmd.Flags().GetString("type")
	explain, _ := cmd.Flags().GetBool("explain")

	run, err := loadRun(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	gaps := make([]domain.ContentGap, 0, len(run.Gaps))
	for _, g := range run.Gaps {
		if gapType != "" && string(g.GapType) != gapType {
			continue
		}
		gaps = append(gaps, g)
		if limit > 0 && len(gaps) == limit {
			break
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, gaps)
	}

	st := stylesFor(cmd.OutOrStdout())
	if len(gaps) == 0 {
		cmd.Println("No gaps found.")
	}
	for _, g := range gaps {
		score := fmt.Sprintf("%.2f", g.OpportunityScore)
		cmd.Printf("%3d. %s  %-20s %s\n", g.Rank, st.Score(g.OpportunityScore, score), g.GapType, g.QueryText)
		if explain {
			printGapDetail(cmd, st, g)
		}
	}

	if len(run.Unevaluated) > 0 && gapType == "" {
		cmd.Println()
		cmd.Println(st.Muted(fmt.Sprintf("%d queries not evaluated:", len(run.Unevaluated))))
		for _, u := range run.Unevaluated {
			cmd.Println(st.Muted(fmt.Sprintf("  %s: %s", u.QueryID, u.Reason)))
		}
	}
	return nil
}

func printGapDetail(cmd *cobra.Command, st *styles, g domain.ContentGap) {
	for _, r := range g.Reasoning {
		cmd.Printf("       %-20s raw %.2f x weight %.2f = %.3f\n", r.Factor, r.RawValue, r.Weight, r.Contribution)
	}
	cmd.Printf("       citations: %d total, %d owner\n", g.TotalCitations, g.OwnerCitations)
	if g.LeadingCompetitorDomain != nil {
		cmd.Printf("       leading competitor: %s\n", *g.LeadingCompetitorDomain)
	}
	for _, e := range g.FeatureEvidence {
		mark := " "
		if e.Missing {
			mark = "!"
		}
		cmd.Printf("     %s %-14s competitors %s, owner %s\n", mark, e.Feature, e.Competitor, e.Owner)
	}
	if g.SuggestedFormat != "" {
		cmd.Printf("       format: %s (effort %s)\n", g.SuggestedFormat, g.Effort)
	}
	if len(g.ContentAngles) > 0 {
		cmd.Println(st.Muted("       angles: " + strings.Join(g.ContentAngles, "; ")))
	}
	cmd.Println()
}
