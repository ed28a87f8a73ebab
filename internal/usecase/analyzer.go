package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	domsvc "PairScope/internal/domain/service"
	"PairScope/internal/services/regression"
	"PairScope/internal/services/signals"
	"PairScope/internal/services/stationarity"
	"PairScope/pkg/logger"
)

// Analyzer picks the better orientation of a pair and reports its regression and spread stationarity.
type Analyzer struct {
	prices  drepo.PriceProvider
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewAnalyzer(prices drepo.PriceProvider, metrics drepo.Metrics, log *logger.Logger) *Analyzer {
	return &Analyzer{prices: prices, metrics: metrics, log: log}
}

var _ domsvc.PairAnalyzer = (*Analyzer)(nil)

// Analyze fits (x=a, y=b) and (x=b, y=a) and reports the orientation with the smaller error ratio.
func (a *Analyzer) Analyze(ctx context.Context, symA, symB string) (*models.PairAnalysis, error) {
	start := time.Now()
	defer func() { a.metrics.RecordLatency("analyze", time.Since(start).Seconds()) }()

	l, err := fetchLegs(ctx, a.prices, symA, symB)
	if err != nil {
		a.metrics.RecordError("analyze")
		return nil, fmt.Errorf("analyze %s/%s: %w", symA, symB, err)
	}
	sel, err := regression.SelectPair(symA, l.a.Closes(), symB, l.b.Closes())
	if err != nil {
		a.metrics.RecordError("analyze")
		return nil, fmt.Errorf("analyze: %w", err)
	}
	c := sel.Canonical()

	out := &models.PairAnalysis{
		RunID:         newRunID(),
		Pair:          c.Pair(),
		XSymbol:       c.XSymbol,
		YSymbol:       c.YSymbol,
		ErrRatios:     [2]float64{sel.Candidates[0].ErrRatio, sel.Candidates[1].ErrRatio},
		Intercept:     c.Result.Intercept,
		Slope:         c.Result.Slope,
		ResidualStdev: c.Result.ResidualStdev,
		LatestStdErr:  signals.Last(c.Result.StdErr()),
		ADF:           adfSummary(c.Result.Residuals, a.log),
	}
	if ts := l.times(); len(ts) > 0 {
		out.AsOf = ts[len(ts)-1]
	}

	a.log.Info("pair analyzed",
		logger.String("pair", out.Pair),
		logger.Float64("slope", out.Slope),
		logger.Float64("intercept", out.Intercept),
		logger.Float64("adf_p", out.ADF.PValue),
	)
	return out, nil
}

// adfSummary tests the spread; a too-short spread yields NaN statistics instead of an error.
func adfSummary(residuals []float64, log *logger.Logger) models.ADFSummary {
	r, err := stationarity.ADF(residuals)
	if err != nil {
		log.Warn("adf skipped", logger.Error(err))
		return models.ADFSummary{Statistic: math.NaN(), PValue: math.NaN()}
	}
	return models.ADFSummary{
		Statistic:      r.Statistic,
		PValue:         r.PValue,
		UsedLag:        r.UsedLag,
		NObs:           r.NObs,
		CriticalValues: r.CriticalValues,
	}
}
