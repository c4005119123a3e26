package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

var competitorsCmd = &cobra.Command{
	Use:   "competitors",
	Short: "Manage the competitor set",
	Long: `Manage the domains treated as competitors when scoring gaps. A domain
cannot be both a competitor and an owner domain of a tracked query.`,
	RunE: runCompetitorsList,
}

var competitorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List competitor domains",
	Args:  cobra.NoArgs,
	RunE:  runCompetitorsList,
}

var competitorsAddCmd = &cobra.Command{
	Use:   "add DOMAIN...",
	Short: "Add competitor domains",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompetitorsAdd,
}

var competitorsRemoveCmd = &cobra.Command{
	Use:   "remove DOMAIN...",
	Short: "Remove competitor domains",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompetitorsRemove,
}

func init() {
	competitorsCmd.AddCommand(competitorsListCmd)
	competitorsCmd.AddCommand(competitorsAddCmd)
	competitorsCmd.AddCommand(competitorsRemoveCmd)
	rootCmd.AddCommand(competitorsCmd)
}

func runCompetitorsList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if len(settings.Competitors) == 0 {
		cmd.Println("No competitors configured.")
		return nil
	}
	for _, d := range settings.Competitors {
		cmd.Println(d)
	}
	return nil
}

func runCompetitorsAdd(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	if queryService != nil {
		if err := checkOwnerOverlap(cmd, args); err != nil {
			return err
		}
	}

	if err := settingsService.AddCompetitors(args...); err != nil {
		return fmt.Errorf("failed to add competitors: %w", err)
	}

	cmd.Printf("Added %d competitor(s)\n", len(args))
	return nil
}

// checkOwnerOverlap rejects competitors that are owner domains of a tracked query.
func checkOwnerOverlap(cmd *cobra.Command, domains []string) error {
	queries, err := queryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list queries: %w", err)
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return domain.ValidateQueries(queries, domain.NewCompetitorSet(append(settings.Competitors, domains...)...))
}

func runCompetitorsRemove(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	if err := settingsService.RemoveCompetitors(args...); err != nil {
		return fmt.Errorf("failed to remove competitors: %w", err)
	}

	cmd.Printf("Removed %d competitor(s)\n", len(args))
	return nil
}
