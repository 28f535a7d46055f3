// internal/cli/list_methods.go
package nvsbench

import (
	"fmt"

	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/util"
	"github.com/spf13/cobra"
)

// listMethodsCmd implements 'list methods', which prints every method that
// has at least one record together with its record count.
var listMethodsCmd = &cobra.Command{
	Use:         "methods",
	Short:       "List methods present in the canonical dataset",
	Annotations: map[string]string{quietLogAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := loadBoard(getConfig())
		if err != nil {
			return err
		}
		counts := make(map[string]int)
		for _, r := range board.Records(leaderboard.NewState()) {
			counts[r.MethodName]++
		}
		out := cmd.OutOrStdout()
		for _, name := range board.Methods() {
			fmt.Fprintf(out, "%s %s %d\n", util.PadRight(name, 18), util.PadRight(board.Registry().MethodDisplayName(name), 24), counts[name])
		}
		return nil
	},
}

// listDatasetsCmd implements 'list datasets', which prints every dataset and
// the scenes that have records.
var listDatasetsCmd = &cobra.Command{
	Use:         "datasets",
	Short:       "List datasets and scenes present in the canonical dataset",
	Annotations: map[string]string{quietLogAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := loadBoard(getConfig())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range board.Datasets() {
			fmt.Fprintf(out, "%s %v\n", util.PadRight(name, 18), board.Scenes(name))
		}
		return nil
	},
}

func init() {
	listCmd.AddCommand(listMethodsCmd)
	listCmd.AddCommand(listDatasetsCmd)
}
