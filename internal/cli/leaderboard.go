// internal/cli/leaderboard.go
package nvsbench

import (
	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/report"
	"github.com/mwiater/nvsbench/internal/results"
	"github.com/spf13/cobra"
)

// selectionFlags are shared by every command that renders a selection.
type selectionFlags struct {
	dataset string
	scene   string
	method  string
	metric  string
	sort    string
	order   string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dataset, "dataset", leaderboard.All, "dataset to rank, or all")
	cmd.Flags().StringVar(&f.scene, "scene", leaderboard.All, "scene within the dataset, or all")
	cmd.Flags().StringVar(&f.method, "method", "", "method to highlight")
	cmd.Flags().StringVar(&f.metric, "metric", string(results.PSNR), "metric plotted against time (psnr, ssim, lpips)")
	cmd.Flags().StringVar(&f.sort, "sort", string(results.PSNR), "sort column (psnr, ssim, lpips, time, max_gpu_memory)")
	cmd.Flags().StringVar(&f.order, "order", "", "sort order (asc or desc; default puts the best value first)")
}

// state applies the flags to a fresh selection.
func (f *selectionFlags) state() (leaderboard.State, error) {
	state := leaderboard.NewState().
		WithDataset(f.dataset).
		WithScene(f.scene).
		ToggleMethod(f.method)
	metric, err := results.ParseMetric(f.metric)
	if err != nil {
		return state, err
	}
	return state.WithMetric(metric), nil
}

func (f *selectionFlags) sortState() (leaderboard.SortState, error) {
	key, err := results.ParseMetric(f.sort)
	if err != nil {
		return leaderboard.SortState{}, err
	}
	s := leaderboard.SortState{Key: key, Order: leaderboard.BestFirst(key)}
	if f.order != "" {
		order, err := leaderboard.ParseOrder(f.order)
		if err != nil {
			return s, err
		}
		s.Order = order
	}
	return s, nil
}

var (
	leaderboardFlags  selectionFlags
	leaderboardFormat string
)

// leaderboardCmd implements 'leaderboard', which prints the ranked table for
// a selection.
var leaderboardCmd = &cobra.Command{
	Use:         "leaderboard",
	Short:       "Print the ranked leaderboard for a dataset and scene",
	Long:        `The 'leaderboard' command averages every method over the selected dataset and scene and prints the ranking as a table, markdown, JSON or YAML.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{quietLogAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(leaderboardFormat)
		if err != nil {
			return err
		}
		state, err := leaderboardFlags.state()
		if err != nil {
			return err
		}
		sort, err := leaderboardFlags.sortState()
		if err != nil {
			return err
		}
		board, err := loadBoard(getConfig())
		if err != nil {
			return err
		}
		lb := report.NewLeaderboard(board.Rows(state, sort), state, sort)
		return report.Write(cmd.OutOrStdout(), format, lb)
	},
}

func init() {
	leaderboardFlags.register(leaderboardCmd)
	leaderboardCmd.Flags().StringVarP(&leaderboardFormat, "format", "f", string(report.FormatTable), "output format: table, markdown, json or yaml")
	rootCmd.AddCommand(leaderboardCmd)
}
