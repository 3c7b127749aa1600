package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viktsys/playerstats/api"
	"github.com/viktsys/playerstats/metrics"
)

var serverFlags struct {
	port   int
	input  string
	fromDB bool
}

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  `Start the HTTP API server to serve the daily series, statistics and exports.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if serverFlags.port != 0 {
			cfg.Server.Port = serverFlags.port
		}
		if serverFlags.input != "" {
			cfg.Output.File = serverFlags.input
		}

		points, err := loadPoints(cmd.Context(), serverFlags.fromDB, cfg.Output.File)
		if err != nil {
			logger.Fatal("failed to load dataset", zap.Error(err))
		}
		logger.Info("dataset loaded", zap.Int("days", len(points)))

		handler := api.NewHandler(points, metrics.NewBuilder(cfg.Stats.Primary, cfg.Stats.TrendWindow), logger)
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           api.SetupRoutes(handler),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("starting server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("failed to start server", zap.Error(err))
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	},
}

func init() {
	f := serverCMD.Flags()
	f.IntVarP(&serverFlags.port, "port", "p", 0, "listen port")
	f.StringVarP(&serverFlags.input, "input", "i", "", "daily artifact path")
	f.BoolVar(&serverFlags.fromDB, "from-db", false, "load the daily aggregates from postgres instead of the artifact")
}
