package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	"PairScope/internal/handler/api"
	"PairScope/internal/usecase"
	"PairScope/pkg/config"
	xhttp "PairScope/pkg/http"
	applogger "PairScope/pkg/logger"
	"PairScope/pkg/util"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	analyzer   *usecase.Analyzer
	scanner    *usecase.Scanner
	backtester *usecase.Backtester
	dispatcher *usecase.ReportDispatcher
	universe   drepo.Universe
	storage    drepo.Storage
}

// New creates a new App instance with all dependencies. storage may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	analyzer *usecase.Analyzer,
	scanner *usecase.Scanner,
	backtester *usecase.Backtester,
	dispatcher *usecase.ReportDispatcher,
	universe drepo.Universe,
	storage drepo.Storage,
) *App {
	return &App{
		cfg:        cfg,
		log:        l,
		analyzer:   analyzer,
		scanner:    scanner,
		backtester: backtester,
		dispatcher: dispatcher,
		universe:   universe,
		storage:    storage,
	}
}

// Analyze reports the regression of one pair. The orientation is chosen by the selector.
func (a *App) Analyze(ctx context.Context, first, second string) (*models.PairAnalysis, error) {
	return a.analyzer.Analyze(ctx, util.NormalizeSymbol(first), util.NormalizeSymbol(second))
}

// Scan runs the batch scan over symbols, or over the universe file when symbols is empty, and writes the report.
func (a *App) Scan(ctx context.Context, symbols []string) (string, error) {
	if len(symbols) == 0 {
		var err error
		if symbols, err = a.universe.Symbols(ctx); err != nil {
			return "", fmt.Errorf("scan: %w", err)
		}
	}
	rows, err := a.scanner.Scan(ctx, symbols)
	if err != nil {
		return "", err
	}
	path, err := a.dispatcher.DispatchScan(ctx, uuid.NewString(), rows)
	if err != nil {
		return "", err
	}
	a.log.Info("scan finished",
		applogger.Int("pairs", len(rows)),
		applogger.Int("errors", usecase.Failures(rows)),
		applogger.String("report", path),
	)
	return path, nil
}

// BacktestPair backtests Y on X and writes the trade report.
// On mismatched histories an ERROR report is written before the error is returned.
func (a *App) BacktestPair(ctx context.Context, y, x, m2Policy string) (*models.PairBacktest, string, error) {
	y, x = util.NormalizeSymbol(y), util.NormalizeSymbol(x)
	report, err := a.backtester.Backtest(ctx, y, x, m2Policy)
	if err != nil {
		if errors.Is(err, models.ErrDataLengthMismatch) {
			if path, werr := a.dispatcher.DispatchPairError(ctx, models.PairName(y, x)); werr == nil {
				a.log.Warn("pair backtest failed", applogger.String("report", path), applogger.Error(err))
			}
		}
		return nil, "", err
	}
	path, err := a.dispatcher.DispatchPairBacktest(ctx, report)
	if err != nil {
		return nil, "", err
	}
	return report, path, nil
}

// BacktestBatch backtests the pair list file and writes the efficiency report.
func (a *App) BacktestBatch(ctx context.Context) (string, error) {
	pairs, err := a.universe.Pairs(ctx)
	if err != nil {
		return "", fmt.Errorf("backtest batch: %w", err)
	}
	rows, err := a.backtester.BacktestBatch(ctx, pairs)
	if err != nil {
		return "", err
	}
	path, err := a.dispatcher.DispatchBacktest(ctx, uuid.NewString(), rows)
	if err != nil {
		return "", err
	}
	a.log.Info("backtest batch finished",
		applogger.Int("pairs", len(rows)),
		applogger.Int("errors", usecase.Failures(rows)),
		applogger.String("report", path),
	)
	return path, nil
}

// Serve runs the HTTP API and blocks until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	var health api.HealthCheck
	if a.storage != nil {
		health = a.storage.Health
	}
	h := api.NewPairsHandler(a.log, a.analyzer, a.backtester, health)

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	srv := xhttp.NewServer(a.log, []xhttp.Handler{h},
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(metricsPath, nil),
	)
	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return srv.Stop(context.Background())
}

// Close flushes the log digest and releases report backends.
func (a *App) Close() {
	a.log.RemoveDigest()
	a.dispatcher.Close()
}
