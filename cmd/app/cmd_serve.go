package main

import (
	"github.com/spf13/cobra"

	"PairScope/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pair API over HTTP",
	Long: `Serve GET /api/pairs/analyze, GET /api/pairs/backtest, GET /healthz
and the Prometheus scrape endpoint until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd)
		defer cancel()

		log.Info("serving", logger.Int("port", cfg.Server.Port))
		return app.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
