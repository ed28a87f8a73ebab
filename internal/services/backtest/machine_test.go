package backtest

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/domain/models"
	"PairScope/internal/services/signals"
	"PairScope/internal/services/sizing"
)

func spikeSpread() (x, y []float64) {
	r := map[int]float64{2: 7.7, 47: 7.7, 5: -7.7, 44: -7.7, 10: -10, 39: -10, 20: 10, 29: 10}
	x = make([]float64, 50)
	y = make([]float64, 50)
	for i := range x {
		x[i] = 100 + float64(i)
		y[i] = 2*x[i] + 50 + r[i]
	}
	return x, y
}

func TestSpikeSpreadTrades(t *testing.T) {
	x, y := spikeSpread()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, len(x))
	for i := range times {
		times[i] = start.AddDate(0, 0, i)
	}

	for _, policy := range []signals.Policy{signals.M2Scan, signals.M2Bounded} {
		res, err := Pair(signals.StdErrDetector{}, policy, x, y, times)
		require.NoError(t, err)
		require.Len(t, res.Trades, 4, policy.Name)

		want := []struct {
			dir         models.Signal
			entry, exit int
			xq, yq      int64
			pnl         int64
		}{
			{models.SignalLong, 10, 11, 26, 11, 106},
			{models.SignalShort, 20, 21, 5, 2, 21},
			{models.SignalShort, 29, 30, 106, 43, 450},
			{models.SignalLong, 39, 40, 318, 139, 1350},
		}
		for k, w := range want {
			tr := res.Trades[k]
			assert.Equal(t, w.dir, tr.Direction)
			assert.Equal(t, w.entry, tr.EntryIndex)
			assert.Equal(t, w.exit, tr.ExitIndex)
			assert.Equal(t, w.xq, tr.XQty)
			assert.Equal(t, w.yq, tr.YQty)
			assert.True(t, tr.PnL.Equal(decimal.NewFromInt(w.pnl)), "trade %d pnl %s", k, tr.PnL)
			assert.Equal(t, models.OutcomeProfit, tr.Outcome)
			assert.Equal(t, times[w.entry], tr.EntryTime)
			assert.Equal(t, "M2_"+string(w.dir), tr.SignalType())
		}
		v, ok := res.Efficiency.Value()
		require.True(t, ok)
		assert.Equal(t, 100.0, v)
	}
}

func TestConstantSeriesNoTrades(t *testing.T) {
	x := []float64{100, 100, 100, 100, 100}
	y := []float64{300, 300, 300, 300, 300}
	for _, d := range []signals.Detector{signals.StdErrDetector{}, signals.PercentileDetector{}} {
		res, err := Pair(d, signals.M2Scan, x, y, nil)
		require.NoError(t, err)
		assert.Empty(t, res.Trades)
		assert.True(t, res.Efficiency.IsNoTrade())
		assert.Equal(t, models.NoTradeLabel, res.Efficiency.String())
	}
}

func TestImmediateExitOnEntryIndex(t *testing.T) {
	res, err := Run(signals.M2Scan, Input{
		Values: []float64{0, -3.5, 0},
		X:      []float64{10, 12, 13},
		Y:      []float64{20, 30, 31},
	})
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, 1, tr.EntryIndex)
	assert.Equal(t, 1, tr.ExitIndex)
	assert.Equal(t, models.OutcomeNeutral, tr.Outcome)
	assert.True(t, tr.PnL.IsZero())
}

func TestOpenPositionDiscarded(t *testing.T) {
	res, err := Run(signals.M2Scan, Input{
		Values: []float64{-2.7, -2.6, math.NaN(), -2.1},
		X:      []float64{10, 11, 12, 13},
		Y:      []float64{20, 21, 22, 23},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.True(t, res.Efficiency.IsNoTrade())
}

func TestExitWaitsForFinitePrices(t *testing.T) {
	res, err := Run(signals.M1Policy, Input{
		Values: []float64{1.0, 50, 50},
		X:      []float64{100, math.Inf(1), 100},
		Y:      []float64{200, 200, 201},
	})
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, 0, tr.EntryIndex)
	assert.Equal(t, 2, tr.ExitIndex)
	assert.True(t, tr.PnL.Equal(decimal.NewFromInt(1)), "pnl %s", tr.PnL)
	assert.Equal(t, models.OutcomeProfit, tr.Outcome)
}

func TestPercentilePairWithInfinitePrice(t *testing.T) {
	n := 200
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = 100
		y[i] = 200 + float64(i%3)
	}
	y[100] = 170
	x[101] = math.Inf(1)

	var res *Result
	var err error
	require.NotPanics(t, func() {
		res, err = Pair(signals.PercentileDetector{}, signals.M1Policy, x, y, nil)
	})
	require.NoError(t, err)
	for _, tr := range res.Trades {
		assert.NotEqual(t, 101, tr.ExitIndex)
		assert.NotEqual(t, 101, tr.EntryIndex)
	}
}

func TestSizingErrorAborts(t *testing.T) {
	_, err := Run(signals.M2Scan, Input{
		Values: []float64{0, 2.7},
		X:      []float64{10, 0.4},
		Y:      []float64{20, 21},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sizing.ErrInvalidPrice))
}

func TestRunLengthMismatch(t *testing.T) {
	_, err := Run(signals.M2Scan, Input{Values: []float64{1, 2}, X: []float64{1}, Y: []float64{1, 2}})
	assert.True(t, errors.Is(err, models.ErrDataLengthMismatch))
}

func TestTradesNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 500
	in := Input{Values: make([]float64, n), X: make([]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		in.Values[i] = rng.NormFloat64() * 2.5
		in.X[i] = 50 + rng.Float64()*50
		in.Y[i] = 80 + rng.Float64()*50
	}
	for _, p := range []signals.Policy{signals.M2Scan, signals.M2Bounded} {
		res, err := Run(p, in)
		require.NoError(t, err)
		last := -1
		for _, tr := range res.Trades {
			assert.LessOrEqual(t, tr.EntryIndex, tr.ExitIndex)
			assert.Greater(t, tr.EntryIndex, last)
			last = tr.ExitIndex
		}
		assert.Equal(t, len(res.Trades), res.Tally.Total())
	}
}

func TestMeasure(t *testing.T) {
	q := sizing.Quantities{X: 26, Y: 11}
	assert.True(t, Measure(models.SignalLong, 110, 260, 111, 272, q).Equal(decimal.NewFromInt(106)))
	assert.True(t, Measure(models.SignalShort, 110, 260, 111, 272, q).Equal(decimal.NewFromInt(-106)))
	assert.True(t, Measure(models.SignalLong, 1.1, 2.2, 1.1, 2.2, q).IsZero())
}

func TestComputeEfficiency(t *testing.T) {
	v, ok := ComputeEfficiency(3, 1, 0).Value()
	require.True(t, ok)
	assert.Equal(t, 75.0, v)
	assert.True(t, ComputeEfficiency(0, 0, 0).IsNoTrade())
	assert.Equal(t, "75.0", ComputeEfficiency(3, 1, 0).String())
	assert.Equal(t, "66.66666666666667", ComputeEfficiency(2, 1, 0).String())
}
