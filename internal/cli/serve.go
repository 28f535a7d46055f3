// internal/cli/serve.go
package nvsbench

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mwiater/nvsbench/internal/images"
	"github.com/mwiater/nvsbench/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd implements 'serve', the read-only JSON API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the leaderboard as a JSON API",
	Long:  `The 'serve' command loads the canonical dataset once and serves datasets, methods, records, rankings, plot points and image comparisons over HTTP, with Prometheus metrics at /metrics.`,
	Args:  cobra.NoArgs,
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
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %d records on %s\n", board.Len(), cfg.Listen())
		return server.New(board, provider).ListenAndServe(ctx, cfg.Listen())
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default :8080)")
	_ = viper.BindPFlag("listenAddr", serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)
}
