package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Validate a configuration document without executing it",
	Long: `Resolve the extends chain, check every document against the configuration
schema, and structurally validate every task in the merged result: known
task types, per-type configuration, and resolvable dependencies. All
problems are reported at once.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, pipe := buildPipeline()
	merged, err := pipe.LoadMerged(args[0])
	if err != nil {
		return err
	}

	if err := pipe.ValidateTasks(merged.Tasks); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d task(s), %d prompt(s), %d variable(s)\n",
		args[0], len(merged.Tasks), len(merged.Prompts), len(merged.Variables))
	return nil
}
