// Package cli defines the grantfeed command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openipdata/grantfeed/internal/config"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions carries the persistent flag values.
type rootOptions struct {
	configPath string
}

// NewRootCommand builds the grantfeed root command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "grantfeed",
		Short: "Bulk patent-grant ingestion service",
		Long: "grantfeed ingests weekly patent-grant bulk archives, normalizes the\n" +
			"records across the three publication dialect eras, and serves the results.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to config file (default: environment variables only)")

	root.AddCommand(
		newServeCommand(opts),
		newWorkerCommand(opts),
		newSyncCommand(opts),
		newExtractCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig resolves configuration from the file flag or the environment.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.Load(o.configPath)
	}
	return config.LoadFromEnv()
}

// initLogger builds the process logger from config and installs it as the
// package default.
func initLogger(cfg *config.Config) (logging.Logger, error) {
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logger, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grantfeed %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
