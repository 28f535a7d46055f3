// internal/cli/browse.go
package nvsbench

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/mwiater/nvsbench/internal/images"
	"github.com/mwiater/nvsbench/internal/logging"
	"github.com/mwiater/nvsbench/internal/tui"
	"github.com/spf13/cobra"
)

// browseCmd implements 'browse', the interactive terminal leaderboard.
var browseCmd = &cobra.Command{
	Use:         "browse",
	Short:       "Browse the leaderboard interactively in the terminal",
	Long:        `The 'browse' command opens a terminal leaderboard: pick a dataset and scene, sort by any column, highlight a method and see its render / ground-truth comparisons.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{quietLogAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		board, err := loadBoard(cfg)
		if err != nil {
			return err
		}
		provider := images.PathProvider{
			BaseURL:   cfg.ImageBaseURL,
			PublicDir: cfg.PublicDir,
			Datasets:  board.Registry(),
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		logging.LogEvent("[BROWSE] %d records loaded", board.Len())
		return tui.Run(ctx, board, provider)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
