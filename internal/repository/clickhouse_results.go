package repository

import (
	"context"
	"fmt"
	"time"

	"PairScope/internal/domain/models"
	domrepo "PairScope/internal/domain/repository"
	pkgch "PairScope/pkg/clickhouse"
	applogger "PairScope/pkg/logger"
)

// CHResults implements Storage backed by ClickHouse.
type CHResults struct {
	ch *pkgch.Client
	db string
	l  *applogger.Logger
}

// NewCHResults stores reports in database db.
func NewCHResults(ch *pkgch.Client, db string, l *applogger.Logger) *CHResults {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHResults{ch: ch, db: db, l: l}
}

var _ domrepo.Storage = (*CHResults)(nil)

func (s *CHResults) table(name string) string { return s.db + "." + name }

// Schema returns the idempotent DDL for every results table.
func (s *CHResults) Schema() []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, s.db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            run_id      String,
            run_at      DateTime,
            pair        String,
            m1_signal   LowCardinality(String),
            intercept   Float64,
            slope       Float64,
            p_value     Float64,
            std_err     Float64,
            correlation Float64,
            m2_signal   LowCardinality(String),
            error       String
        ) ENGINE = MergeTree ORDER BY (run_at, pair)`, s.table("scan_results")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            run_id        String,
            run_at        DateTime,
            pair          String,
            m1_efficiency Nullable(Float64),
            m2_efficiency Nullable(Float64),
            error         String
        ) ENGINE = MergeTree ORDER BY (run_at, pair)`, s.table("backtest_results")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            run_id      String,
            pair        String,
            detector    LowCardinality(String),
            direction   LowCardinality(String),
            entry_index UInt32,
            exit_index  UInt32,
            entry_time  DateTime,
            exit_time   DateTime,
            entry_x     Float64,
            entry_y     Float64,
            exit_x      Float64,
            exit_y      Float64,
            x_qty       Int64,
            y_qty       Int64,
            pnl         Decimal(38, 6),
            outcome     LowCardinality(String)
        ) ENGINE = MergeTree ORDER BY (pair, entry_time)`, s.table("pair_trades")),
	}
}

// Init creates the database and tables.
func (s *CHResults) Init(ctx context.Context) error {
	if err := s.ch.InitSchema(ctx, s.Schema()); err != nil {
		s.l.Error("clickhouse init schema error", applogger.String("database", s.db), applogger.Error(err))
		return err
	}
	return nil
}

func (s *CHResults) StoreScanRows(ctx context.Context, runID string, at time.Time, rows []models.ScanRow) error {
	q := fmt.Sprintf(`INSERT INTO %s (run_id, run_at, pair, m1_signal, intercept, slope, p_value, std_err, correlation, m2_signal, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table("scan_results"))
	batch := make([][]any, 0, len(rows))
	for _, r := range rows {
		batch = append(batch, []any{
			runID, at.UTC(), r.Pair, string(r.M1Signal),
			r.Intercept, r.Slope, r.PValue, r.StdErr, r.Correlation,
			string(r.M2Signal), r.Err,
		})
	}
	return s.insert(ctx, models.ReportScan, q, batch)
}

func (s *CHResults) StoreBacktestRows(ctx context.Context, runID string, at time.Time, rows []models.BacktestRow) error {
	q := fmt.Sprintf(`INSERT INTO %s (run_id, run_at, pair, m1_efficiency, m2_efficiency, error)
        VALUES (?, ?, ?, ?, ?, ?)`, s.table("backtest_results"))
	batch := make([][]any, 0, len(rows))
	for _, r := range rows {
		batch = append(batch, []any{runID, at.UTC(), r.Pair, efficiencyArg(r.M1Efficiency), efficiencyArg(r.M2Efficiency), r.Err})
	}
	return s.insert(ctx, models.ReportBacktest, q, batch)
}

func (s *CHResults) StoreTrades(ctx context.Context, runID, pair string, trades []models.Trade) error {
	q := fmt.Sprintf(`INSERT INTO %s (run_id, pair, detector, direction, entry_index, exit_index, entry_time, exit_time,
        entry_x, entry_y, exit_x, exit_y, x_qty, y_qty, pnl, outcome)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table("pair_trades"))
	batch := make([][]any, 0, len(trades))
	for _, t := range trades {
		batch = append(batch, []any{
			runID, pair, t.Detector, string(t.Direction),
			uint32(t.EntryIndex), uint32(t.ExitIndex), t.EntryTime.UTC(), t.ExitTime.UTC(),
			t.EntryX, t.EntryY, t.ExitX, t.ExitY,
			t.XQty, t.YQty, t.PnL, string(t.Outcome),
		})
	}
	return s.insert(ctx, models.ReportPairBacktest, q, batch)
}

func (s *CHResults) insert(ctx context.Context, kind, q string, batch [][]any) error {
	start := time.Now()
	if err := s.ch.InsertBatch(ctx, q, batch); err != nil {
		s.l.Error("clickhouse insert error",
			applogger.String("report", kind),
			applogger.Int("rows", len(batch)),
			applogger.Error(err),
		)
		return fmt.Errorf("store %s: %w", kind, err)
	}
	s.l.Debug("clickhouse insert ok",
		applogger.String("report", kind),
		applogger.Int("rows", len(batch)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func efficiencyArg(e models.Efficiency) *float64 {
	v, ok := e.Value()
	if !ok {
		return nil
	}
	return &v
}

func (s *CHResults) Health(ctx context.Context) error { return s.ch.Health(ctx) }

func (s *CHResults) Close() error { return s.ch.Close() }
