package provider

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/domain/models"
	"PairScope/pkg/cache"
)

type fakeUpstream struct {
	calls int
	err   error
}

func (f *fakeUpstream) Fetch(_ context.Context, symbol string) (models.PriceSeries, error) {
	f.calls++
	if f.err != nil {
		return models.PriceSeries{}, f.err
	}
	t0 := time.Unix(1700000000, 0).UTC()
	return models.PriceSeries{Symbol: symbol, Points: []models.PricePoint{
		{Time: t0, Close: 10},
		{Time: t0.Add(24 * time.Hour), Close: math.NaN()},
		{Time: t0.Add(48 * time.Hour), Close: 12.5},
	}}, nil
}

type countingMetrics struct {
	fetches map[string]int
	states  []int
}

func newCountingMetrics() *countingMetrics { return &countingMetrics{fetches: map[string]int{}} }

func (m *countingMetrics) RecordFetch(_, outcome string) { m.fetches[outcome]++ }
func (m *countingMetrics) RecordError(string) {}
func (m *countingMetrics) RecordPair(string, string) {}
func (m *countingMetrics) RecordLatency(string, float64) {}
func (m *countingMetrics) RecordBreakerState(_ string, s int) { m.states = append(m.states, s) }

func TestGuardedCachesSeriesWithMissingCloses(t *testing.T) {
	up := &fakeUpstream{}
	mem := cache.NewMemoryCache()
	defer mem.Close()
	m := newCountingMetrics()
	g := NewGuarded("yahoo", up, WithMetrics(m), WithCache(mem, time.Hour, "1d", 24))

	first, err := g.Fetch(context.Background(), "TCS")
	require.NoError(t, err)
	second, err := g.Fetch(context.Background(), "TCS")
	require.NoError(t, err)

	assert.Equal(t, 1, up.calls)
	assert.Equal(t, 1, m.fetches[outcomeMiss])
	assert.Equal(t, 1, m.fetches[outcomeHit])
	require.Equal(t, 3, second.Len())
	assert.True(t, math.IsNaN(second.Points[1].Close))
	assert.Equal(t, first.Points[2], second.Points[2])
	assert.Equal(t, first.Points[0].Time, second.Points[0].Time)
}

func TestGuardedBreakerOpensOnUnavailable(t *testing.T) {
	up := &fakeUpstream{err: models.ErrProviderUnavailable}
	m := newCountingMetrics()
	g := NewGuarded("yahoo", up, WithMetrics(m), WithBreaker(2, time.Hour))

	for i := 0; i < 2; i++ {
		_, err := g.Fetch(context.Background(), "TCS")
		require.ErrorIs(t, err, models.ErrProviderUnavailable)
	}
	_, err := g.Fetch(context.Background(), "TCS")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)
	assert.Equal(t, 2, up.calls)
	assert.Equal(t, []int{2}, m.states)
}

func TestGuardedUnknownSymbolDoesNotTrip(t *testing.T) {
	up := &fakeUpstream{err: models.ErrUnknownSymbol}
	g := NewGuarded("yahoo", up, WithBreaker(1, time.Hour))

	for i := 0; i < 3; i++ {
		_, err := g.Fetch(context.Background(), "NOPE")
		require.ErrorIs(t, err, models.ErrUnknownSymbol)
	}
	assert.Equal(t, 3, up.calls)
}

func TestGuardedPacingRespectsContext(t *testing.T) {
	up := &fakeUpstream{}
	g := NewGuarded("yahoo", up, WithMinInterval(time.Hour))

	_, err := g.Fetch(context.Background(), "A")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Fetch(ctx, "B")
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrProviderUnavailable))
	assert.Equal(t, 1, up.calls)
}
