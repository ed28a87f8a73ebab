package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	domsvc "PairScope/internal/domain/service"
	"PairScope/internal/services/backtest"
	"PairScope/internal/services/signals"
	"PairScope/pkg/logger"
)

const modeBacktest = "backtest"

// ErrUnknownPolicy is returned for an M2 policy name other than "bounded" or "scan".
var ErrUnknownPolicy = errors.New("unknown m2 policy")

// Backtester replays M1 and M2 over pairs given in Y, X order. No orientation selection is applied.
type Backtester struct {
	prices   drepo.PriceProvider
	metrics  drepo.Metrics
	log      *logger.Logger
	maxPairs int
}

func NewBacktester(prices drepo.PriceProvider, metrics drepo.Metrics, log *logger.Logger, maxPairs int) *Backtester {
	return &Backtester{prices: prices, metrics: metrics, log: log, maxPairs: maxPairs}
}

var _ domsvc.PairBacktester = (*Backtester)(nil)

// Backtest runs M1 then M2 (with the named policy) over one pair. Any error aborts.
func (b *Backtester) Backtest(ctx context.Context, y, x, m2Policy string) (*models.PairBacktest, error) {
	start := time.Now()
	defer func() { b.metrics.RecordLatency("backtest_pair", time.Since(start).Seconds()) }()

	policy, ok := signals.M2PolicyByName(m2Policy)
	if !ok {
		return nil, fmt.Errorf("backtest: %q: %w", m2Policy, ErrUnknownPolicy)
	}
	pair := models.PairName(y, x)
	l, err := fetchLegs(ctx, b.prices, y, x)
	if err != nil {
		b.metrics.RecordError("backtest")
		return nil, fmt.Errorf("backtest %s: %w", pair, err)
	}
	ys, xs, times := l.a.Closes(), l.b.Closes(), l.times()

	m1, err := backtest.Pair(signals.PercentileDetector{}, signals.M1Policy, xs, ys, times)
	if err != nil {
		b.metrics.RecordError("backtest")
		return nil, fmt.Errorf("backtest %s: %w", pair, err)
	}
	m2, err := backtest.Pair(signals.StdErrDetector{}, policy, xs, ys, times)
	if err != nil {
		b.metrics.RecordError("backtest")
		return nil, fmt.Errorf("backtest %s: %w", pair, err)
	}

	out := &models.PairBacktest{
		RunID:     newRunID(),
		Pair:      pair,
		XSymbol:   x,
		YSymbol:   y,
		Trades:    append(append([]models.Trade{}, m1.Trades...), m2.Trades...),
		Summaries: []models.BacktestSummary{m1.Summary(pair, models.DetectorM1), m2.Summary(pair, models.DetectorM2)},
	}
	b.log.Info("pair backtested",
		logger.String("pair", pair),
		logger.String("m2_policy", policy.Name),
		logger.String("m1_efficiency", m1.Efficiency.String()),
		logger.String("m2_efficiency", m2.Efficiency.String()),
		logger.Int("trades", len(out.Trades)),
	)
	return out, nil
}

// BacktestBatch runs the first maxPairs pairs with the scan M2 policy. A failing pair becomes an ERROR row.
func (b *Backtester) BacktestBatch(ctx context.Context, pairs []drepo.PairRef) ([]models.BacktestRow, error) {
	if b.maxPairs > 0 && len(pairs) > b.maxPairs {
		pairs = pairs[:b.maxPairs]
	}
	rows := make([]models.BacktestRow, 0, len(pairs))
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		row, err := b.batchRow(ctx, p)
		b.metrics.RecordPair(modeBacktest, outcome(err))
		if err != nil {
			row = models.BacktestRow{Pair: models.PairName(p.Y, p.X), Err: err.Error()}
			b.log.Warn("backtest pair failed", logger.String("pair", row.Pair), logger.Error(err))
		} else {
			b.log.Info("backtest pair done",
				logger.String("pair", row.Pair),
				logger.String("m1_efficiency", row.M1Efficiency.String()),
				logger.String("m2_efficiency", row.M2Efficiency.String()),
			)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *Backtester) batchRow(ctx context.Context, p drepo.PairRef) (models.BacktestRow, error) {
	l, err := fetchLegs(ctx, b.prices, p.Y, p.X)
	if err != nil {
		return models.BacktestRow{}, err
	}
	ys, xs := l.a.Closes(), l.b.Closes()
	m1, err := backtest.Pair(signals.PercentileDetector{}, signals.M1Policy, xs, ys, nil)
	if err != nil {
		return models.BacktestRow{}, err
	}
	m2, err := backtest.Pair(signals.StdErrDetector{}, signals.M2Scan, xs, ys, nil)
	if err != nil {
		return models.BacktestRow{}, err
	}
	return models.BacktestRow{
		Pair:         models.PairName(p.Y, p.X),
		M1Efficiency: m1.Efficiency,
		M2Efficiency: m2.Efficiency,
	}, nil
}
