// Package cli wires the analyzer's cobra commands.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/arbiterhq/arbiter/internal/config"
	"github.com/arbiterhq/arbiter/pkg/logger"
)

var (
	cfgFile  string
	logLevel string

	// cfg is loaded once before any subcommand runs.
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "arbiter",
		Short: "Chess tournament game analysis",
		Long: `Arbiter ingests tournament PGN files and produces engine-backed
statistics: move quality and accuracy, time usage, comebacks, blown
leads, dominance and resilience.`,
		SilenceUsage:      true,
		PersistentPreRunE: bootstrap,
	}
)

// ExecuteContext runs the root command under the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func bootstrap(cmd *cobra.Command, _ []string) error {
	if err := logger.Init(); err != nil {
		return err
	}

	if cfgFile != "" {
		if err := os.Setenv("ARBITER_CONFIG", cfgFile); err != nil {
			return err
		}
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return logger.SetLevelString(cfg.LogLevel)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}
