package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Show prioritised recommendations",
	Long: `Show the action items derived from a run's gaps, high priority first.
Recommendations backed by a supporting pattern are marked as corroborated.`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.String("run", "", "run id (default latest)")
	f.IntP("limit", "n", 0, "maximum number of recommendations (0 = all)")
	f.String("priority", "", "only show this tier (high, medium, low)")
	f.Bool("json", false, "output as JSON")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errNoAnalysis
	}

	id, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")
	priority, _ := cmd.Flags().GetString("priority")
	tier := domain.PriorityTier(priority)
	if priority != "" && !tier.IsValid() {
		return &domain.ConfigurationError{Field: "priority", Reason: fmt.Sprintf("unknown tier %q", priority)}
	}

	seq, err := analysisService.Recommendations(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load recommendations: %w", err)
	}

	recs := make([]domain.Recommendation, 0)
	for r := range seq {
		if priority != "" && r.Tier != tier {
			continue
		}
		recs = append(recs, r)
		if limit > 0 && len(recs) == limit {
			break
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, recs)
	}

	if len(recs) == 0 {
		cmd.Println("No recommendations.")
		return nil
	}

	st := stylesFor(cmd.OutOrStdout())
	for _, r := range recs {
		label := fmt.Sprintf("[%-6s]", r.Tier)
		mark := ""
		if r.Corroborated {
			mark = " *"
		}
		cmd.Printf("%s %.2f  %s%s\n", st.Tier(r.Tier, label), r.Score, r.Title, mark)
		cmd.Println(st.Muted("         " + r.Description))
	}
	cmd.Println()
	cmd.Println(st.Muted("* corroborated by a citation pattern"))
	return nil
}
