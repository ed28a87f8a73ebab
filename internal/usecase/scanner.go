package usecase

import (
	"context"
	"math"
	"time"

	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	"PairScope/internal/services/regression"
	"PairScope/internal/services/signals"
	"PairScope/internal/services/stationarity"
	"PairScope/pkg/logger"
	"PairScope/pkg/util"
)

const modeScan = "scan"

// Scanner screens every 2-combination of a symbol universe.
type Scanner struct {
	prices   drepo.PriceProvider
	metrics  drepo.Metrics
	log      *logger.Logger
	maxPairs int
}

func NewScanner(prices drepo.PriceProvider, metrics drepo.Metrics, log *logger.Logger, maxPairs int) *Scanner {
	return &Scanner{prices: prices, metrics: metrics, log: log, maxPairs: maxPairs}
}

// Scan returns one row per combination in list order, at most maxPairs rows.
// A failing pair becomes an ERROR row; cancellation stops between pairs and returns the rows so far.
func (s *Scanner) Scan(ctx context.Context, symbols []string) ([]models.ScanRow, error) {
	combos := util.Combinations(symbols, s.maxPairs)
	rows := make([]models.ScanRow, 0, len(combos))
	for _, c := range combos {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		start := time.Now()
		row, err := s.scanPair(ctx, c[0], c[1])
		s.metrics.RecordPair(modeScan, outcome(err))
		s.metrics.RecordLatency("scan_pair", time.Since(start).Seconds())
		if err != nil {
			row = models.ScanRow{Pair: models.PairName(c[1], c[0]), Err: err.Error()}
			s.log.Warn("scan pair failed", logger.String("pair", row.Pair), logger.Error(err))
		} else {
			s.log.Info("scan pair done",
				logger.String("pair", row.Pair),
				logger.String("m1", string(row.M1Signal)),
				logger.String("m2", string(row.M2Signal)),
			)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Scanner) scanPair(ctx context.Context, a, b string) (models.ScanRow, error) {
	l, err := fetchLegs(ctx, s.prices, a, b)
	if err != nil {
		return models.ScanRow{}, err
	}
	sel, err := regression.SelectPair(a, l.a.Closes(), b, l.b.Closes())
	if err != nil {
		return models.ScanRow{}, err
	}
	c := sel.Canonical()

	m1, err := signals.PercentileDetector{}.Series(c.X, c.Y)
	if err != nil {
		return models.ScanRow{}, err
	}
	corr, err := regression.Correlation(c.X, c.Y)
	if err != nil {
		return models.ScanRow{}, err
	}
	stdErr := signals.Last(c.Result.StdErr())

	pValue := math.NaN()
	if r, err := stationarity.ADF(c.Result.Residuals); err == nil {
		pValue = r.PValue * 100
	} else {
		s.log.Debug("adf skipped", logger.String("pair", c.Pair()), logger.Error(err))
	}

	return models.ScanRow{
		Pair:        c.Pair(),
		M1Signal:    signals.M1Policy.Entry(signals.Last(m1)),
		Intercept:   c.Result.Intercept,
		Slope:       c.Result.Slope,
		PValue:      pValue,
		StdErr:      stdErr,
		Correlation: corr * 100,
		M2Signal:    signals.M2Scan.Entry(stdErr),
	}, nil
}

// Failures counts ERROR rows.
func Failures[T interface{ Failed() bool }](rows []T) int {
	n := 0
	for _, r := range rows {
		if r.Failed() {
			n++
		}
	}
	return n
}
