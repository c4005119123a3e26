package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citescope/internal/adapters/driven/feed"
	"github.com/custodia-labs/citescope/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Ingest citation records",
	Long: `Ingest JSON Lines files of raw citation records, one record per line.
Use "-" to read from standard input.

Each file is normalised against the stored events. Malformed and orphaned
records are dropped and reported; they never fail the command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("json", false, "output reports as JSON")
	ingestCmd.Flags().Bool("show-rejected", false, "list every rejected record")
	rootCmd.AddCommand(ingestCmd)
}

type fileReport struct {
	File   string                      `json:"file"`
	Report *domain.NormalisationReport `json:"report"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errNoIngest
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	showRejected, _ := cmd.Flags().GetBool("show-rejected")

	reports := make([]fileReport, 0, len(args))
	for _, path := range args {
		records, err := readRecords(cmd, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		report, err := ingestService.Ingest(cmd.Context(), records)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		reports = append(reports, fileReport{File: path, Report: report})
	}

	if asJSON {
		return printJSON(cmd, reports)
	}

	st := stylesFor(cmd.OutOrStdout())
	for _, r := range reports {
		rep := r.Report
		cmd.Printf("%s: %d received, %d accepted, %d duplicates, %d already known, %d rejected (%d orphaned)\n",
			r.File, rep.Received, rep.Accepted, rep.Duplicates, rep.Known, len(rep.Rejected), rep.Orphaned())
		if showRejected {
			for i := range rep.Rejected {
				cmd.Println(st.Muted("  " + rep.Rejected[i].Error()))
			}
		}
	}
	return nil
}

func readRecords(cmd *cobra.Command, path string) ([]domain.RawCitation, error) {
	if path == "-" {
		return feed.ReadRecords(cmd.InOrStdin())
	}
	return feed.ReadRecordsFile(path)
}
