package regression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/domain/models"
)

func selectorFixture() ([]float64, []float64) {
	a := []float64{101, 103, 102, 106, 108, 107, 111, 115, 113, 118}
	b := []float64{52, 53.1, 52.4, 55.3, 55.9, 55.2, 57.8, 59.1, 58.6, 61.2}
	return a, b
}

func TestSelectPairSwapIdempotent(t *testing.T) {
	a, b := selectorFixture()

	ab, err := SelectPair("A", a, "B", b)
	require.NoError(t, err)
	ba, err := SelectPair("B", b, "A", a)
	require.NoError(t, err)

	assert.Equal(t, ab.Canonical().YSymbol, ba.Canonical().YSymbol)
	assert.Equal(t, ab.Canonical().XSymbol, ba.Canonical().XSymbol)
	assert.InDelta(t, ab.Canonical().Result.Slope, ba.Canonical().Result.Slope, 1e-12)
}

func TestSelectPairPicksSmallerRatio(t *testing.T) {
	a, b := selectorFixture()
	sel, err := SelectPair("A", a, "B", b)
	require.NoError(t, err)

	other := sel.Candidates[1-sel.Chosen]
	assert.LessOrEqual(t, sel.Canonical().ErrRatio, other.ErrRatio)
	assert.Equal(t, "B", sel.Candidates[0].YSymbol)
	assert.Equal(t, "A", sel.Candidates[0].XSymbol)
}

func TestSelectPairLengthMismatch(t *testing.T) {
	_, err := SelectPair("A", []float64{1, 2, 3}, "B", []float64{1, 2})
	assert.True(t, errors.Is(err, models.ErrDataLengthMismatch))
}
