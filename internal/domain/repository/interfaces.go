package repository

import (
	"context"
	"time"

	"PairScope/internal/domain/models"
)

// PriceProvider returns the daily close history of a symbol over the configured lookback.
type PriceProvider interface {
	Fetch(ctx context.Context, symbol string) (models.PriceSeries, error)
}

// Publisher streams finished reports to downstream consumers.
type Publisher interface {
	PublishScanRows(ctx context.Context, runID string, rows []models.ScanRow) error
	PublishBacktestRows(ctx context.Context, runID string, rows []models.BacktestRow) error
	PublishTrades(ctx context.Context, runID, pair string, trades []models.Trade) error
	Close() error
}

// Storage persists reports for later querying.
type Storage interface {
	Init(ctx context.Context) error // ensure tables
	StoreScanRows(ctx context.Context, runID string, at time.Time, rows []models.ScanRow) error
	StoreBacktestRows(ctx context.Context, runID string, at time.Time, rows []models.BacktestRow) error
	StoreTrades(ctx context.Context, runID, pair string, trades []models.Trade) error
	Health(ctx context.Context) error // ping
	Close() error
}

// ReportSink writes human-readable reports and returns where they went.
type ReportSink interface {
	WriteScan(ctx context.Context, at time.Time, rows []models.ScanRow) (string, error)
	WriteBacktest(ctx context.Context, at time.Time, rows []models.BacktestRow) (string, error)
	WritePairBacktest(ctx context.Context, at time.Time, report *models.PairBacktest) (string, error)
	WritePairError(ctx context.Context, at time.Time, pair string) (string, error)
}

type Metrics interface {
	RecordFetch(symbol, outcome string)
	RecordError(kind string)
	RecordPair(mode, outcome string)
	RecordLatency(op string, seconds float64)
	RecordBreakerState(name string, state int)
}
