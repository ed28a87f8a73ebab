package signals

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"PairScope/internal/domain/models"
	"PairScope/internal/services/regression"
)

// Detector computes one value per index over the whole pair.
type Detector interface {
	Name() string
	Series(x, y []float64) ([]float64, error)
}

// PercentileDetector fits a Normal to Y/X and reports each ratio's CDF as a percentage.
type PercentileDetector struct{}

func (PercentileDetector) Name() string { return models.DetectorM1 }

func (PercentileDetector) Series(x, y []float64) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("percentile detector: %w", models.ErrDataLengthMismatch)
	}
	// Indices where either price is missing stay NaN and are left out of the fit.
	ratio := make([]float64, len(x))
	finite := make([]float64, 0, len(x))
	for i := range x {
		r := math.NaN()
		if isFinite(x[i]) && isFinite(y[i]) {
			r = y[i] / x[i]
		}
		ratio[i] = r
		if isFinite(r) {
			finite = append(finite, r)
		}
	}
	out := make([]float64, len(x))
	mean, sd := math.NaN(), math.NaN()
	if len(finite) > 0 {
		mean, sd = stat.PopMeanStdDev(finite, nil)
	}
	if sd == 0 || math.IsNaN(sd) {
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}
	dist := distuv.Normal{Mu: mean, Sigma: sd}
	for i, r := range ratio {
		if !isFinite(r) {
			out[i] = math.NaN()
			continue
		}
		out[i] = dist.CDF(r) * 100
	}
	return out, nil
}

// StdErrDetector reports residual / residual stdev of the OLS fit of Y on X.
type StdErrDetector struct{}

func (StdErrDetector) Name() string { return models.DetectorM2 }

func (StdErrDetector) Series(x, y []float64) ([]float64, error) {
	res, err := regression.Fit(x, y)
	if err != nil {
		return nil, fmt.Errorf("std err detector: %w", err)
	}
	return res.StdErr(), nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Last returns the final element of values, or NaN when empty.
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
