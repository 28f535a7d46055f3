// internal/cli/ingest.go
package nvsbench

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mwiater/nvsbench/internal/ingest"
	"github.com/spf13/cobra"
)

var (
	successText = color.New(color.FgGreen).SprintFunc()
	warningText = color.New(color.FgYellow).SprintFunc()
	failedText  = color.New(color.FgRed).SprintFunc()
)

var (
	ingestWatch    bool
	ingestDebounce time.Duration
)

// ingestCmd implements 'ingest', which aggregates every per-run result file
// into the canonical dataset.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Aggregate result files into the canonical dataset",
	Long: `The 'ingest' command walks the results directory, validates every result file,
resolves duplicates (the file later in path order wins) and atomically writes the
canonical dataset. Invalid files are skipped with a warning. A missing results
directory is fatal and leaves the previous dataset untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		opts := ingest.Options{
			Root:   cfg.ResultsRoot(),
			Output: cfg.CanonicalPath(),
			Marker: cfg.ResultMarker(),
		}
		out := cmd.OutOrStdout()

		if !ingestWatch {
			summary, err := ingest.Run(opts)
			if err != nil {
				return err
			}
			printIngestSummary(out, summary)
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", opts.Root)
		return ingest.Watch(ctx, opts, ingestDebounce, func(summary ingest.Summary, err error) {
			if err != nil {
				fmt.Fprintln(out, failedText(fmt.Sprintf("Ingestion failed: %v", err)))
				return
			}
			printIngestSummary(out, summary)
		})
	},
}

func printIngestSummary(out io.Writer, summary ingest.Summary) {
	for _, r := range summary.Rejected {
		fmt.Fprintln(out, warningText(fmt.Sprintf("Skipped %s: %s", r.Path, r.Reason)))
	}
	for _, d := range summary.Duplicates {
		fmt.Fprintln(out, warningText(fmt.Sprintf("Duplicate %s: %s replaces %s", d.Key, d.Kept, d.Replaced)))
	}
	fmt.Fprintln(out, successText(fmt.Sprintf("Aggregated %d result files into %s", summary.Count(), summary.Output)))
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep running and re-ingest when result files change")
	ingestCmd.Flags().DurationVar(&ingestDebounce, "debounce", ingest.DefaultDebounce, "quiet period before re-ingesting in watch mode")
	rootCmd.AddCommand(ingestCmd)
}
