package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citescope/internal/adapters/driven/feed"
	"github.com/custodia-labs/citescope/internal/core/domain"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Manage tracked queries",
	Long: `Manage the queries whose AI search citations are analysed. Citation
records for queries that are not tracked are dropped as orphaned.`,
}

var queryAddCmd = &cobra.Command{
	Use:   "add ID TEXT",
	Short: "Track a query",
	Args:  cobra.ExactArgs(2),
	RunE:  runQueryAdd,
}

var queryImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import tracked queries from YAML",
	Long: `Import tracked queries from a YAML file of the form:

  queries:
    - id: crm-pricing
      text: best crm pricing
      priority_weight: 2
      owner_domains: [example.com]

The file is validated as a whole; nothing is stored if any query is invalid.
Use "-" to read from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runQueryImport,
}

var queryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked queries as YAML",
	Args:  cobra.NoArgs,
	RunE:  runQueryExport,
}

var queryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked queries",
	Args:  cobra.NoArgs,
	RunE:  runQueryList,
}

var queryRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Stop tracking a query",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueryRemove,
}

func init() {
	queryAddCmd.Flags().Float64P("priority", "p", domain.DefaultPriorityWeight, "priority weight")
	queryAddCmd.Flags().StringSliceP("owner", "o", nil, "owner domain, repeatable")
	queryListCmd.Flags().Bool("json", false, "output as JSON")

	queryCmd.AddCommand(queryAddCmd)
	queryCmd.AddCommand(queryImportCmd)
	queryCmd.AddCommand(queryExportCmd)
	queryCmd.AddCommand(queryListCmd)
	queryCmd.AddCommand(queryRemoveCmd)
	rootCmd.AddCommand(queryCmd)
}

func runQueryAdd(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errNoQuery
	}

	priority, _ := cmd.Flags().GetFloat64("priority")
	owners, _ := cmd.Flags().GetStringSlice("owner")
	if priority == 0 {
		return &domain.ConfigurationError{Field: "priority", Reason: "must be positive"}
	}

	q := domain.TrackedQuery{
		ID:             args[0],
		Text:           args[1],
		PriorityWeight: priority,
		OwnerDomains:   owners,
	}
	if err := queryService.Add(cmd.Context(), q); err != nil {
		return fmt.Errorf("failed to add query: %w", err)
	}

	cmd.Printf("Tracking query %s\n", q.ID)
	return nil
}

func runQueryImport(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errNoQuery
	}

	var queries []domain.TrackedQuery
	var err error
	if args[0] == "-" {
		queries, err = feed.ReadQueries(cmd.InOrStdin())
	} else {
		queries, err = feed.ReadQueriesFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	n, err := queryService.Import(cmd.Context(), queries)
	if err != nil {
		return fmt.Errorf("failed to import queries: %w", err)
	}

	cmd.Printf("Imported %d queries\n", n)
	return nil
}

func runQueryExport(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errNoQuery
	}

	queries, err := queryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list queries: %w", err)
	}
	return feed.WriteQueries(cmd.OutOrStdout(), queries)
}

func runQueryList(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errNoQuery
	}

	queries, err := queryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list queries: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, queries)
	}

	if len(queries) == 0 {
		cmd.Println("No tracked queries. Add one with 'citescope query add'.")
		return nil
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title("Tracked Queries"))
	for _, q := range queries {
		owners := strings.Join(q.OwnerDomains, ", ")
		if owners == "" {
			owners = "-"
		}
		cmd.Printf("%-20s %5.2f  %-40s %s\n", q.ID, q.Priority(), q.Text, st.Muted(owners))
	}
	return nil
}

func runQueryRemove(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errNoQuery
	}

	if err := queryService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove query: %w", err)
	}

	cmd.Printf("Stopped tracking %s\n", args[0])
	return nil
}
