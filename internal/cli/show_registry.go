// internal/cli/show_registry.go
package nvsbench

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/mwiater/nvsbench/internal/registry"
	"github.com/mwiater/nvsbench/internal/util"
	"github.com/spf13/cobra"
)

var showRegistryDump bool

// showRegistryCmd implements 'show registry', which lists the known datasets
// with their scenes and the known methods.
var showRegistryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Show the dataset and method registries",
	Long:  `Show the datasets (with their scenes) and methods named by the registry files. Use --dump to print the raw registry entries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(getConfig())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if showRegistryDump {
			pp.Fprintln(out, reg.Datasets())
			pp.Fprintln(out, reg.Methods())
			return nil
		}
		printRegistry(out, reg)
		return nil
	},
}

func printRegistry(out io.Writer, reg *registry.Registry) {
	heading := color.New(color.Bold).SprintFunc()

	fmt.Fprintln(out, heading("Datasets:"))
	if len(reg.Datasets()) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, d := range reg.Datasets() {
		fmt.Fprintf(out, "  %s %s\n", util.PadRight(d.DatasetName, 18), reg.DatasetDisplayName(d.DatasetName))
		if len(d.Scenes) > 0 {
			fmt.Fprintf(out, "  %s scenes: %s\n", util.PadRight("", 18), strings.Join(d.Scenes, ", "))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, heading("Methods:"))
	if len(reg.Methods()) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, m := range reg.Methods() {
		line := fmt.Sprintf("  %s %s", util.PadRight(m.MethodName, 18), reg.MethodDisplayName(m.MethodName))
		if m.MethodURL != "" {
			line += "  " + m.MethodURL
		}
		fmt.Fprintln(out, line)
	}
}

func init() {
	showRegistryCmd.Flags().BoolVar(&showRegistryDump, "dump", false, "pretty-print the raw registry entries")
	showCmd.AddCommand(showRegistryCmd)
}
