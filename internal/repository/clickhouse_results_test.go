package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/domain/models"
	pkgch "PairScope/pkg/clickhouse"
)

func newMockResults(t *testing.T) (*CHResults, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCHResults(pkgch.NewClientWithDB(db), "pairscope", nil), mock
}

func TestCHResultsInit(t *testing.T) {
	s, mock := newMockResults(t)
	mock.ExpectExec("CREATE DATABASE IF NOT EXISTS pairscope").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pairscope.scan_results").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pairscope.backtest_results").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pairscope.pair_trades").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHResultsStoreScanRows(t *testing.T) {
	s, mock := newMockResults(t)
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO pairscope\.scan_results`)
	prep.ExpectExec().
		WithArgs("run-1", at, "B_A", "LONG", 1.5, 2.0, 3.0, -2.7, 91.0, "NOSIG", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("run-1", at, "C_A", "", 0.0, 0.0, 0.0, 0.0, 0.0, "", "data length mismatch").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.StoreScanRows(context.Background(), "run-1", at, []models.ScanRow{
		{Pair: "B_A", M1Signal: models.SignalLong, Intercept: 1.5, Slope: 2, PValue: 3, StdErr: -2.7, Correlation: 91, M2Signal: models.SignalNone},
		{Pair: "C_A", Err: "data length mismatch"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHResultsStoreBacktestRowsNoTradeIsNull(t *testing.T) {
	s, mock := newMockResults(t)
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO pairscope\.backtest_results`)
	prep.ExpectExec().
		WithArgs("run-2", at, "B_A", 75.0, nil, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.StoreBacktestRows(context.Background(), "run-2", at, []models.BacktestRow{
		{Pair: "B_A", M1Efficiency: models.NumericEfficiency(75), M2Efficiency: models.NoTrade()},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHResultsStoreTradesWrapsError(t *testing.T) {
	s, mock := newMockResults(t)
	t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO pairscope\.pair_trades`)
	prep.ExpectExec().WillReturnError(errors.New("table is read only"))
	mock.ExpectRollback()

	err := s.StoreTrades(context.Background(), "run-3", "B_A", []models.Trade{{
		Detector: models.DetectorM2, Direction: models.SignalLong,
		EntryIndex: 10, ExitIndex: 11, EntryTime: t0, ExitTime: t0.Add(24 * time.Hour),
		EntryX: 110, EntryY: 260, ExitX: 111, ExitY: 272,
		XQty: 26, YQty: 11, PnL: decimal.NewFromInt(106), Outcome: models.OutcomeProfit,
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store pair_backtest")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHResultsEmptyBatchIsNoop(t *testing.T) {
	s, mock := newMockResults(t)
	require.NoError(t, s.StoreTrades(context.Background(), "run", "B_A", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
