package usecase

import (
	"context"
	"fmt"
	"time"

	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	"PairScope/pkg/logger"
)

// ReportDispatcher routes finished reports to the file sink and, when configured, to storage and the publisher.
// Only a sink failure is returned; storage and publisher failures are logged and counted.
type ReportDispatcher struct {
	sink    drepo.ReportSink
	store   drepo.Storage
	pub     drepo.Publisher
	metrics drepo.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewReportDispatcher creates a dispatcher. store and pub may be nil.
func NewReportDispatcher(
	sink drepo.ReportSink,
	store drepo.Storage,
	pub drepo.Publisher,
	metrics drepo.Metrics,
	log *logger.Logger,
) *ReportDispatcher {
	return &ReportDispatcher{
		sink:    sink,
		store:   store,
		pub:     pub,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// DispatchScan writes the scan report and returns its path.
func (d *ReportDispatcher) DispatchScan(ctx context.Context, runID string, rows []models.ScanRow) (string, error) {
	at := d.now()
	if d.store != nil {
		d.secondary("clickhouse", models.ReportScan, d.store.StoreScanRows(ctx, runID, at, rows))
	}
	if d.pub != nil {
		d.secondary("kafka", models.ReportScan, d.pub.PublishScanRows(ctx, runID, rows))
	}
	return d.primary(models.ReportScan, func() (string, error) { return d.sink.WriteScan(ctx, at, rows) })
}

// DispatchBacktest writes the batch backtest report and returns its path.
func (d *ReportDispatcher) DispatchBacktest(ctx context.Context, runID string, rows []models.BacktestRow) (string, error) {
	at := d.now()
	if d.store != nil {
		d.secondary("clickhouse", models.ReportBacktest, d.store.StoreBacktestRows(ctx, runID, at, rows))
	}
	if d.pub != nil {
		d.secondary("kafka", models.ReportBacktest, d.pub.PublishBacktestRows(ctx, runID, rows))
	}
	return d.primary(models.ReportBacktest, func() (string, error) { return d.sink.WriteBacktest(ctx, at, rows) })
}

// DispatchPairBacktest writes the trade list of one pair and returns its path.
func (d *ReportDispatcher) DispatchPairBacktest(ctx context.Context, report *models.PairBacktest) (string, error) {
	if report == nil {
		return "", fmt.Errorf("dispatch %s: nil report", models.ReportPairBacktest)
	}
	at := d.now()
	if d.store != nil {
		d.secondary("clickhouse", models.ReportPairBacktest, d.store.StoreTrades(ctx, report.RunID, report.Pair, report.Trades))
	}
	if d.pub != nil {
		d.secondary("kafka", models.ReportPairBacktest, d.pub.PublishTrades(ctx, report.RunID, report.Pair, report.Trades))
	}
	return d.primary(models.ReportPairBacktest, func() (string, error) { return d.sink.WritePairBacktest(ctx, at, report) })
}

// DispatchPairError writes the ERROR report of a pair whose backtest aborted.
func (d *ReportDispatcher) DispatchPairError(ctx context.Context, pair string) (string, error) {
	at := d.now()
	return d.primary(models.ReportPairBacktest, func() (string, error) { return d.sink.WritePairError(ctx, at, pair) })
}

func (d *ReportDispatcher) primary(kind string, write func() (string, error)) (string, error) {
	start := time.Now()
	path, err := write()
	if err != nil {
		d.metrics.RecordError("report_" + kind)
		return "", fmt.Errorf("dispatch %s: %w", kind, err)
	}
	d.metrics.RecordLatency("report_"+kind, time.Since(start).Seconds())
	d.log.Info("report written", logger.String("report", kind), logger.String("path", path))
	return path, nil
}

func (d *ReportDispatcher) secondary(backend, kind string, err error) {
	if err == nil {
		return
	}
	d.metrics.RecordError(backend)
	d.log.Error("report backend failed",
		logger.String("backend", backend),
		logger.String("report", kind),
		logger.Error(err),
	)
}

// Close closes underlying resources if available.
func (d *ReportDispatcher) Close() {
	if d.pub != nil {
		_ = d.pub.Close()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
}
