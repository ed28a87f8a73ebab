package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PairScope/internal/di"
	"PairScope/pkg/config"
	"PairScope/pkg/logger"
	"PairScope/pkg/server"
)

var (
	configPath string

	cfg     *config.Config
	log     *logger.Logger
	app     *server.App
	cleanup func()
)

// rootCmd is the base command for the PairScope CLI
var rootCmd = &cobra.Command{
	Use:   "pairscope",
	Short: "PairScope pair-trading signal and backtest engine",
	Long: `PairScope regresses one stock's daily closes on another's, flags
mean-reversion entries on the spread and replays them through a trade
state machine to measure how often the signals would have paid off.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		teardown()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	log, err = logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	log.Debug("config loaded",
		logger.String("env", cfg.Environment),
		logger.String("output_dir", cfg.Output.Dir),
		logger.Bool("clickhouse", cfg.ClickHouse.Enabled),
		logger.Bool("kafka", cfg.Kafka.Enabled),
	)

	app, cleanup, err = di.InitializeApp(cfg, log)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	return nil
}

func teardown() {
	if app != nil {
		app.Close()
		app = nil
	}
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// signalContext is cancelled on SIGINT or SIGTERM so batch runs stop between pairs.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
