package models

import (
	"math"
	"time"
)

// PairName renders the canonical "Y_X" identifier used in every report.
func PairName(ySymbol, xSymbol string) string { return ySymbol + "_" + xSymbol }

// FiniteOrNil returns nil for NaN and ±Inf so the value can be encoded as JSON null.
func FiniteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ADFSummary is the advisory stationarity result for a spread.
type ADFSummary struct {
	Statistic      float64            `json:"statistic"`
	PValue         float64            `json:"p_value"`
	UsedLag        int                `json:"used_lag"`
	NObs           int                `json:"nobs"`
	CriticalValues map[string]float64 `json:"critical_values"`
}

// PairAnalysis is the single-pair regression report.
type PairAnalysis struct {
	RunID         string     `json:"run_id"`
	Pair          string     `json:"pair"`
	XSymbol       string     `json:"x_symbol"`
	YSymbol       string     `json:"y_symbol"`
	ErrRatios     [2]float64 `json:"err_ratios"`
	Intercept     float64    `json:"intercept"`
	Slope         float64    `json:"slope"`
	ResidualStdev float64    `json:"residual_stdev"`
	LatestStdErr  float64    `json:"latest_std_err"`
	ADF           ADFSummary `json:"adf"`
	AsOf          time.Time  `json:"as_of"`
}

// ScanRow is one line of the batch scan report. Failed pairs carry Err and render as ERROR.
type ScanRow struct {
	Pair        string  `json:"pair"`
	M1Signal    Signal  `json:"m1_signal,omitempty"`
	Intercept   float64 `json:"intercept"`
	Slope       float64 `json:"slope"`
	PValue      float64 `json:"p_value"`
	StdErr      float64 `json:"std_err"`
	Correlation float64 `json:"correlation"`
	M2Signal    Signal  `json:"m2_signal,omitempty"`
	Err         string  `json:"error,omitempty"`
}

func (r ScanRow) Failed() bool { return r.Err != "" }

// BacktestRow is one line of the batch backtest report.
type BacktestRow struct {
	Pair         string     `json:"pair"`
	M1Efficiency Efficiency `json:"m1_efficiency"`
	M2Efficiency Efficiency `json:"m2_efficiency"`
	Err          string     `json:"error,omitempty"`
}

func (r BacktestRow) Failed() bool { return r.Err != "" }

// PairBacktest is the single-pair backtest report: trades of both detectors, M1 first.
type PairBacktest struct {
	RunID     string            `json:"run_id"`
	Pair      string            `json:"pair"`
	XSymbol   string            `json:"x_symbol"`
	YSymbol   string            `json:"y_symbol"`
	Trades    []Trade           `json:"trades"`
	Summaries []BacktestSummary `json:"summaries"`
}

// Report kinds used by sinks and stores.
const (
	ReportScan         = "scan"
	ReportBacktest     = "backtest"
	ReportPairBacktest = "pair_backtest"
	ReportAnalysis     = "analysis"
)
