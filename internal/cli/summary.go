// internal/cli/summary.go
package nvsbench

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mwiater/nvsbench/internal/ingest"
	"github.com/mwiater/nvsbench/internal/report"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	summaryMethod string
	summaryFormat string
)

// summaryCmd implements 'summary', which prints one method's per-scene
// results with dataset and benchmark-wide averages.
var summaryCmd = &cobra.Command{
	Use:         "summary",
	Short:       "Summarize one method across every dataset",
	Long:        `The 'summary' command prints a method's scores per scene, the average of each dataset, and the average of the dataset averages across the whole benchmark.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{quietLogAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(summaryMethod) == "" {
			return fmt.Errorf("--method is required")
		}
		cfg := getConfig()
		records, err := ingest.Load(cfg.CanonicalPath())
		if err != nil {
			return err
		}
		reg, err := loadRegistry(cfg)
		if err != nil {
			return err
		}
		s, err := report.Summarize(records, summaryMethod, reg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(summaryFormat) {
		case "", "markdown", "md":
			return report.WriteSummaryMarkdown(out, s)
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		case "yaml", "yml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(s); err != nil {
				return err
			}
			return enc.Close()
		default:
			return fmt.Errorf("unknown format %q (want markdown, json or yaml)", summaryFormat)
		}
	},
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryMethod, "method", "m", "", "method name")
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", "markdown", "output format: markdown, json or yaml")
	rootCmd.AddCommand(summaryCmd)
}
