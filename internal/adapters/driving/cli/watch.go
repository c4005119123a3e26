package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citescope/internal/adapters/driving/watch"
	"github.com/custodia-labs/citescope/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Ingest and analyse files dropped into a directory",
	Long: `Watch DIR for new JSON Lines files of citation records. Each file is
ingested as it arrives and the analysis is re-run, at most once per
--interval. Files already in the directory are processed on start.

Files should be moved into DIR once complete rather than written in place.
Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", watch.DefaultMinInterval, "minimum time between analysis runs")
	watchCmd.Flags().String("name", "watch", "label for the runs")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errNoIngest
	}
	if analysisService == nil {
		return errNoAnalysis
	}

	interval, _ := cmd.Flags().GetDuration("interval")
	name, _ := cmd.Flags().GetString("name")

	st := stylesFor(cmd.OutOrStdout())
	w, err := watch.New(args[0], ingestService, analysisService, watch.Options{
		MinInterval: interval,
		Spec:        domain.RunSpec{Name: name},
		OnIngest: func(path string, r *domain.NormalisationReport) {
			cmd.Printf("%s: %d accepted, %d rejected\n", path, r.Accepted, len(r.Rejected))
		},
		OnRun: func(r *domain.RunResult) {
			cmd.Printf("run %s: %d gaps, %s high priority\n",
				r.ID, len(r.Gaps), st.Tier(domain.TierHigh, fmt.Sprint(r.Summary.ByTier[domain.TierHigh])))
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(ctx)
}
