package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgex-labs/forgex/internal/config"
	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/engine"
	"github.com/forgex-labs/forgex/internal/plugin"
	"github.com/forgex-labs/forgex/internal/prompt"
	"github.com/forgex-labs/forgex/internal/resolve"
	"github.com/forgex-labs/forgex/internal/tasks"
)

var (
	runVars           []string
	runDryRun         bool
	runNonInteractive bool
)

var runCmd = &cobra.Command{
	Use:   "run <config>",
	Short: "Execute a configuration document",
	Long: `Load a configuration document (local path or URL), resolve its extends
chain, collect variables and prompt answers, and execute its tasks in
dependency order.

Variables are overridden with --var flags; overridden ids are never
prompted for.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringArrayVar(&runVars, "var", nil, "Override a variable as id=value (can be specified multiple times)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Report what would execute without side effects")
	runCmd.Flags().BoolVar(&runNonInteractive, "non-interactive", false, "Answer prompts from defaults instead of asking")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	overrides, err := parseVarFlags(runVars)
	if err != nil {
		return err
	}

	resolver, pipe := buildPipeline()
	nonInteractive := runNonInteractive || config.NonInteractive()

	result, err := pipe.Run(context.Background(), engine.RunOptions{
		Ref:           args[0],
		DryRun:        runDryRun,
		Overrides:     overrides,
		EngineVersion: buildVersion,
		Prompter:      prompt.New(resolver, nonInteractive),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
	return result.Err()
}

// buildPipeline wires the run collaborators with timeouts from user settings.
func buildPipeline() (*resolve.Resolver, *engine.Pipeline) {
	loader := document.NewLoader()
	resolver := resolve.New(loader,
		resolve.WithExecTimeout(config.ExecTimeout()),
		resolve.WithFileTimeout(config.FileTimeout()),
	)
	registry := plugin.NewRegistry()
	if err := tasks.RegisterBuiltins(registry, resolver); err != nil {
		// Built-in registration only fails on a programming error.
		panic(err)
	}
	eng := engine.New(registry, resolver)
	return resolver, engine.NewPipeline(loader, resolver, eng)
}

// parseVarFlags converts id=value pairs into an override map.
func parseVarFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		id, value, found := strings.Cut(pair, "=")
		if !found || id == "" {
			return nil, fmt.Errorf("invalid --var %q: expected id=value", pair)
		}
		if err := document.ValidateID("variable", id); err != nil {
			return nil, fmt.Errorf("invalid --var %q: %w", pair, err)
		}
		overrides[id] = value
	}
	return overrides, nil
}
