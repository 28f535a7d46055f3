// internal/cli/report.go
package nvsbench

import (
	"bytes"
	"fmt"

	"github.com/mwiater/nvsbench/internal/logging"
	"github.com/mwiater/nvsbench/internal/report"
	"github.com/mwiater/nvsbench/internal/util"
	"github.com/spf13/cobra"
)

var (
	reportFlags  selectionFlags
	reportOutput string
)

// reportCmd implements 'report', which writes a standalone HTML leaderboard
// with a metric-vs-time scatter chart.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a standalone HTML leaderboard report",
	Long:  `The 'report' command renders the leaderboard for a selection, together with an interactive metric-vs-training-time scatter chart, into a single HTML file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := reportFlags.state()
		if err != nil {
			return err
		}
		sort, err := reportFlags.sortState()
		if err != nil {
			return err
		}
		board, err := loadBoard(getConfig())
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := report.WriteHTML(&buf, report.HTMLInput{Board: board, State: state, Sort: sort}); err != nil {
			return err
		}
		if err := util.WriteFileAtomic(reportOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logging.LogEvent("[REPORT] wrote %s (%d bytes)", reportOutput, buf.Len())
		fmt.Fprintln(cmd.OutOrStdout(), successText(fmt.Sprintf("Report written to %s", reportOutput)))
		return nil
	},
}

func init() {
	reportFlags.register(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "reports/leaderboard.html", "HTML file to write")
	rootCmd.AddCommand(reportCmd)
}
