package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viktsys/playerstats/metrics"
)

var statsFlags struct {
	input  string
	preset string
	window int
	fromDB bool
}

var statsCMD = &cobra.Command{
	Use:   "stats",
	Short: "Print the summary statistics of the daily artifact",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if statsFlags.input != "" {
			cfg.Output.File = statsFlags.input
		}
		if statsFlags.window > 0 {
			cfg.Stats.TrendWindow = statsFlags.window
		}

		points, err := loadPoints(cmd.Context(), statsFlags.fromDB, cfg.Output.File)
		if err != nil {
			logger.Fatal("failed to load dataset", zap.Error(err))
		}
		if err := metrics.CheckSorted(points); err != nil {
			logger.Warn("dataset is not sorted", zap.Error(err))
		}

		if statsFlags.preset != "" {
			r, err := metrics.ResolvePreset(points, statsFlags.preset)
			if err != nil {
				logger.Fatal("invalid range", zap.Error(err))
			}
			points = metrics.FilterRange(points, r)
		}

		stats := metrics.NewBuilder(cfg.Stats.Primary, cfg.Stats.TrendWindow).BuildStats(points)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			logger.Fatal("failed to print stats", zap.Error(err))
		}
	},
}

func init() {
	f := statsCMD.Flags()
	f.StringVarP(&statsFlags.input, "input", "i", "", "daily artifact path")
	f.StringVar(&statsFlags.preset, "preset", "", "range preset (1M, 3M, 6M, 1Y, ALL)")
	f.IntVar(&statsFlags.window, "window", 0, "trend window in records")
	f.BoolVar(&statsFlags.fromDB, "from-db", false, "load the daily aggregates from postgres")
}
