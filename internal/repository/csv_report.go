package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"PairScope/internal/domain/models"
	domrepo "PairScope/internal/domain/repository"
	"PairScope/pkg/util"
)

const errorCell = "ERROR"

var (
	scanHeader         = []string{"Pair", "M1-signal", "Intercept", "Slope", "p-value", "std_err", "Correlation", "M2-signal"}
	backtestHeader     = []string{"Pair", "M1-Efficiency(%)", "M2-Efficiency(%)"}
	pairBacktestHeader = []string{"Signal Date", "Exit Date", "Signal Type", "Profit/Loss", "Qty. X", "Qty. Y"}
)

// CSVReports writes dated CSV files into a directory.
type CSVReports struct {
	dir string
}

func NewCSVReports(dir string) *CSVReports { return &CSVReports{dir: dir} }

var _ domrepo.ReportSink = (*CSVReports)(nil)

// WriteScan writes batch_result_<date>.csv.
func (r *CSVReports) WriteScan(_ context.Context, at time.Time, rows []models.ScanRow) (string, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, scanHeader)
	for _, row := range rows {
		if row.Failed() {
			records = append(records, []string{row.Pair, errorCell})
			continue
		}
		records = append(records, []string{
			row.Pair,
			string(row.M1Signal),
			formatFloat(row.Intercept),
			formatFloat(row.Slope),
			formatFloat(row.PValue),
			formatFloat(row.StdErr),
			formatFloat(row.Correlation),
			string(row.M2Signal),
		})
	}
	return r.write(util.DatedFileName("batch_result_", at, ""), records)
}

// WriteBacktest writes backtest_result_<date>.csv.
func (r *CSVReports) WriteBacktest(_ context.Context, at time.Time, rows []models.BacktestRow) (string, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, backtestHeader)
	for _, row := range rows {
		if row.Failed() {
			records = append(records, []string{row.Pair, errorCell})
			continue
		}
		records = append(records, []string{row.Pair, row.M1Efficiency.String(), row.M2Efficiency.String()})
	}
	return r.write(util.DatedFileName("backtest_result_", at, ""), records)
}

// WritePairBacktest writes backtest_result_<date><Y>_<X>.csv with M1 trades before M2 trades.
func (r *CSVReports) WritePairBacktest(_ context.Context, at time.Time, report *models.PairBacktest) (string, error) {
	records := make([][]string, 0, len(report.Trades)+1)
	records = append(records, pairBacktestHeader)
	for _, t := range report.Trades {
		records = append(records, []string{
			util.DateStamp(t.EntryTime),
			util.DateStamp(t.ExitTime),
			t.SignalType(),
			t.PnL.String(),
			strconv.FormatInt(t.XQty, 10),
			strconv.FormatInt(t.YQty, 10),
		})
	}
	return r.write(util.DatedFileName("backtest_result_", at, report.Pair), records)
}

// WritePairError writes the single ERROR row of a pair that could not be backtested.
func (r *CSVReports) WritePairError(_ context.Context, at time.Time, pair string) (string, error) {
	return r.write(util.DatedFileName("backtest_result_", at, pair), [][]string{pairBacktestHeader, {pair, errorCell}})
}

func (r *CSVReports) write(name string, records [][]string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write report %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report %s: %w", name, err)
	}
	return path, nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
