// Package sizing computes integer hedge quantities for a two-leg position.
package sizing

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPrice matches any InvalidPriceError.
var ErrInvalidPrice = errors.New("invalid price for sizing")

// InvalidPriceError carries the prices that could not be sized.
type InvalidPriceError struct {
	X float64
	Y float64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price for sizing: x=%v y=%v", e.X, e.Y)
}

func (e *InvalidPriceError) Is(target error) bool { return target == ErrInvalidPrice }

// Quantities are share counts for each leg.
type Quantities struct {
	X int64
	Y int64
}

// Hedge returns the smallest integer quantities with X*trunc(x) == Y*trunc(y).
// Prices are truncated toward zero before sizing.
func Hedge(x, y float64) (Quantities, error) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return Quantities{}, &InvalidPriceError{X: x, Y: y}
	}
	xi, yi := int64(x), int64(y)
	if xi <= 0 || yi <= 0 {
		return Quantities{}, &InvalidPriceError{X: x, Y: y}
	}
	d := gcd(xi, yi)
	return Quantities{X: yi / d, Y: xi / d}, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
