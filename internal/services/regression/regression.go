// Package regression fits the linear relationship between two price series
// and exposes the residual spread used by the signal detectors.
package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"PairScope/internal/domain/models"
)

// ErrInsufficientData is returned when fewer than two aligned points survive cleaning.
var ErrInsufficientData = errors.New("insufficient data for regression")

// Result is an OLS fit of y = Slope*x + Intercept. Fitted and Residuals have the
// length of the input; indices dropped during cleaning hold NaN.
type Result struct {
	Slope           float64
	Intercept       float64
	Fitted          []float64
	Residuals       []float64
	ResidualStdev   float64
	InterceptStderr float64
	// Kept lists the original indices used by the fit.
	Kept []int
}

// N is the number of points used by the fit.
func (r *Result) N() int { return len(r.Kept) }

// StdErr returns residual[i] / ResidualStdev for every index. A zero stdev yields NaN throughout.
func (r *Result) StdErr() []float64 {
	out := make([]float64, len(r.Residuals))
	for i, e := range r.Residuals {
		if r.ResidualStdev == 0 || math.IsNaN(r.ResidualStdev) {
			out[i] = math.NaN()
			continue
		}
		out[i] = e / r.ResidualStdev
	}
	return out
}

// CleanAligned drops every index where x or y is NaN or infinite, keeping the two
// series in lockstep. kept lists the surviving original indices.
func CleanAligned(x, y []float64) (xc, yc []float64, kept []int, err error) {
	if len(x) != len(y) {
		return nil, nil, nil, fmt.Errorf("clean aligned: %d vs %d: %w", len(x), len(y), models.ErrDataLengthMismatch)
	}
	bad := make(map[int]struct{})
	for i, v := range x {
		if !finite(v) {
			bad[i] = struct{}{}
		}
	}
	for i, v := range y {
		if !finite(v) {
			bad[i] = struct{}{}
		}
	}
	xc = make([]float64, 0, len(x)-len(bad))
	yc = make([]float64, 0, len(y)-len(bad))
	kept = make([]int, 0, len(x)-len(bad))
	for i := range x {
		if _, skip := bad[i]; skip {
			continue
		}
		xc = append(xc, x[i])
		yc = append(yc, y[i])
		kept = append(kept, i)
	}
	return xc, yc, kept, nil
}

// Fit runs OLS of y on x with an intercept.
func Fit(x, y []float64) (*Result, error) {
	xc, yc, kept, err := CleanAligned(x, y)
	if err != nil {
		return nil, err
	}
	n := len(xc)
	if n < 2 {
		return nil, fmt.Errorf("fit: %d points: %w", n, ErrInsufficientData)
	}

	xMean := stat.Mean(xc, nil)
	var sxx float64
	for _, v := range xc {
		d := v - xMean
		sxx += d * d
	}

	var slope, intercept float64
	if sxx == 0 {
		intercept = stat.Mean(yc, nil)
	} else {
		intercept, slope = stat.LinearRegression(xc, yc, nil, false)
	}

	res := &Result{
		Slope:     slope,
		Intercept: intercept,
		Fitted:    make([]float64, len(x)),
		Residuals: make([]float64, len(x)),
		Kept:      kept,
	}
	for i := range res.Fitted {
		res.Fitted[i] = math.NaN()
		res.Residuals[i] = math.NaN()
	}
	cleanResid := make([]float64, n)
	var ssr float64
	for j, i := range kept {
		f := slope*x[i] + intercept
		e := y[i] - f
		res.Fitted[i] = f
		res.Residuals[i] = e
		cleanResid[j] = e
		ssr += e * e
	}
	_, res.ResidualStdev = stat.PopMeanStdDev(cleanResid, nil)

	res.InterceptStderr = math.Inf(1)
	if n >= 3 && sxx > 0 {
		s2 := ssr / float64(n-2)
		res.InterceptStderr = math.Sqrt(s2 * (1/float64(n) + xMean*xMean/sxx))
	}
	return res, nil
}

// Correlation is the Pearson correlation of the cleaned series, NaN when undefined.
func Correlation(x, y []float64) (float64, error) {
	xc, yc, _, err := CleanAligned(x, y)
	if err != nil {
		return math.NaN(), err
	}
	if len(xc) < 2 {
		return math.NaN(), nil
	}
	return stat.Correlation(xc, yc, nil), nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
