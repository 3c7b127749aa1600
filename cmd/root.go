package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viktsys/playerstats/config"
	"github.com/viktsys/playerstats/logging"
)

const (
	sourceRealmEye   = "realmeye"
	sourceRealmStock = "realmstock"
)

var (
	cfg      *config.Config
	logger   *zap.Logger
	logLevel string
)

var rootCMD = &cobra.Command{
	Use:   "playerstats",
	Short: "Daily player-count aggregation and statistics",
	Long: `A CLI application that aggregates player-count snapshots from two
exports into daily min/max series and serves derived statistics
(current value, all-time peak and low, trend, day-over-day deltas).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Development)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func Execute() {
	err := rootCMD.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCMD.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCMD.AddCommand(aggregateCMD, serverCMD, statsCMD)
}
