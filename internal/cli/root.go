package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/forgex-labs/forgex/internal/branding"
	"github.com/forgex-labs/forgex/internal/config"
	"github.com/forgex-labs/forgex/internal/logger"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` executes declarative project configurations: documents describing
prompts, variables, and tasks, composed through inheritance and run in
dependency order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		level := logLevel
		if level == "" {
			level = config.Get(config.KeyLogLevel)
		}
		if level != "" {
			logger.Configure(os.Stderr, logger.Level(level))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
