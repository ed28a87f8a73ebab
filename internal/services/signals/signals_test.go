package signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/domain/models"
)

// spikeSpread returns X = 100+i and Y = 2X + 50 + r with symmetric spikes in r.
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

func TestPolicyEntryBands(t *testing.T) {
	cases := []struct {
		policy Policy
		v      float64
		want   models.Signal
	}{
		{M2Scan, -3.5, models.SignalLong},
		{M2Scan, -2.5, models.SignalLong},
		{M2Scan, -2.49, models.SignalNone},
		{M2Scan, 4, models.SignalShort},
		{M2Bounded, -3.5, models.SignalNone},
		{M2Bounded, -3.0, models.SignalLong},
		{M2Bounded, 2.7, models.SignalShort},
		{M2Bounded, 3.01, models.SignalNone},
		{M1Policy, 0.3, models.SignalLong},
		{M1Policy, 0.29, models.SignalNone},
		{M1Policy, 99.7, models.SignalShort},
		{M1Policy, 50, models.SignalNone},
		{M2Scan, math.NaN(), models.SignalNone},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.policy.Entry(c.v), "%s at %v", c.policy.Name, c.v)
	}
}

func TestPolicyExitBands(t *testing.T) {
	assert.False(t, M2Scan.ShouldExit(models.SignalLong, -2.0))
	assert.True(t, M2Scan.ShouldExit(models.SignalLong, -1.99))
	assert.True(t, M2Scan.ShouldExit(models.SignalLong, -3.5))
	assert.False(t, M2Scan.ShouldExit(models.SignalShort, 2.0))
	assert.True(t, M2Scan.ShouldExit(models.SignalShort, 3.2))
	assert.False(t, M2Scan.ShouldExit(models.SignalLong, math.NaN()))
	assert.False(t, M1Policy.ShouldExit(models.SignalShort, 98))
	assert.True(t, M1Policy.ShouldExit(models.SignalShort, 50))
	assert.False(t, M1Policy.ShouldExit(models.SignalNone, 50))
}

func TestM2PolicyByName(t *testing.T) {
	p, ok := M2PolicyByName("scan")
	require.True(t, ok)
	assert.Equal(t, M2Scan.Name, p.Name)
	_, ok = M2PolicyByName("other")
	assert.False(t, ok)
}

func TestPercentileDetector(t *testing.T) {
	values, err := PercentileDetector{}.Series([]float64{1, 1, 1, 1}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Len(t, values, 4)
	assert.Less(t, values[0], values[1])
	assert.InDelta(t, 50, (values[1]+values[2])/2, 1e-9)

	values, err = PercentileDetector{}.Series([]float64{2, 2, 0}, []float64{4, 4, 1})
	require.NoError(t, err)
	// constant finite ratio has zero spread
	for _, v := range values {
		assert.True(t, math.IsNaN(v))
	}
}

func TestPercentileDetectorSkipsMissingPrices(t *testing.T) {
	x := []float64{1, 1, math.Inf(1), 1, math.NaN(), 1}
	y := []float64{1, 2, 5, 3, 4, math.Inf(-1)}
	values, err := PercentileDetector{}.Series(x, y)
	require.NoError(t, err)
	require.Len(t, values, 6)
	for _, i := range []int{2, 4, 5} {
		assert.True(t, math.IsNaN(values[i]), "index %d", i)
	}

	// only the three fully priced indices shape the fit
	clean, err := PercentileDetector{}.Series([]float64{1, 1, 1}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, clean[0], values[0], 1e-12)
	assert.InDelta(t, clean[1], values[1], 1e-12)
	assert.InDelta(t, clean[2], values[3], 1e-12)
}

func TestStdErrDetectorSpikes(t *testing.T) {
	x, y := spikeSpread()
	values, err := StdErrDetector{}.Series(x, y)
	require.NoError(t, err)

	sigma := math.Sqrt(637.16 / 50)
	assert.InDelta(t, -10/sigma, values[10], 1e-6)
	assert.InDelta(t, 10/sigma, values[20], 1e-6)
	assert.InDelta(t, 0, values[11], 1e-6)

	signals := M2Scan.Classify(values)
	assert.Equal(t, models.SignalLong, signals[10])
	assert.Equal(t, models.SignalShort, signals[29])
	assert.Equal(t, models.SignalNone, signals[5])
	assert.Equal(t, models.SignalLong, M2Scan.Entry(Last([]float64{0, -2.6})))
}

func TestStdErrDetectorConstant(t *testing.T) {
	values, err := StdErrDetector{}.Series([]float64{100, 100, 100, 100, 100}, []float64{300, 300, 300, 300, 300})
	require.NoError(t, err)
	for _, s := range M2Scan.Classify(values) {
		assert.Equal(t, models.SignalNone, s)
	}
}
