// Package cmd defines the CLI commands for the rk9crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ptcgtools/rk9-crawler/internal/config"
	"github.com/ptcgtools/rk9-crawler/internal/logging"
)

var (
	cfgFile string

	cfg    config.Config
	logger *zap.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rk9crawler",
		Short: "Crawls rk9.gg tournament listings and rosters into Postgres",
		Long: `rk9crawler scrapes the rk9.gg events listing and per-event player
rosters, normalizes the records, and persists them with deduplication.
Crawling is sequential and politely rate-limited by design.`,

		SilenceUsage: true,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			return nil
		},

		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is env-only)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

// Execute is the main entry point. A fatal error terminates the process
// with a non-zero status after logging.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
