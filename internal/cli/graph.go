package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgex-labs/forgex/internal/depgraph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <config>",
	Short: "Show the task execution order",
	Long: `Print the merged task list in the order it would execute, with the
dependencies of each task. Conditions are not evaluated; the graph shows
every task the configuration declares.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	_, pipe := buildPipeline()
	merged, err := pipe.LoadMerged(args[0])
	if err != nil {
		return err
	}

	sorted, err := depgraph.Sort(merged.Tasks)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, t := range sorted {
		line := fmt.Sprintf("%d. %s (%s)", i+1, t.ID, t.Type)
		if len(t.Dependencies) > 0 {
			line += " <- " + strings.Join(t.Dependencies, ", ")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
