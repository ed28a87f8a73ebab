package stationarity

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MacKinnon (1994) response surface for one series, no constant.
const (
	tauMin  = -19.04
	tauStar = -1.04
)

var (
	tauSmallP = [3]float64{0.6344, 1.2378, 0.032496}
	tauLargeP = [4]float64{0.4797, 0.93557, -0.06999, 0.033066}
)

// MacKinnon (2010) critical value coefficients, one series, no constant.
var tauCrit = map[string][4]float64{
	Crit1:  {-2.56574, -2.2358, -3.627, 0},
	Crit5:  {-1.94100, -0.2686, -3.365, 31.223},
	Crit10: {-1.61682, 0.2656, -2.714, 25.364},
}

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// MacKinnonP is the approximate p-value of an ADF statistic.
func MacKinnonP(stat float64) float64 {
	if math.IsNaN(stat) {
		return math.NaN()
	}
	if stat < tauMin {
		return 0
	}
	var z float64
	if stat <= tauStar {
		z = poly(tauSmallP[:], stat)
	} else {
		z = poly(tauLargeP[:], stat)
	}
	return stdNormal.CDF(z)
}

// MacKinnonCrit returns the 1%, 5% and 10% critical values for nobs observations.
func MacKinnonCrit(nobs int) map[string]float64 {
	inv := 1 / float64(nobs)
	out := make(map[string]float64, len(tauCrit))
	for k, c := range tauCrit {
		out[k] = poly(c[:], inv)
	}
	return out
}

// poly evaluates c[0] + c[1]*v + c[2]*v^2 + ...
func poly(c []float64, v float64) float64 {
	var out float64
	for i := len(c) - 1; i >= 0; i-- {
		out = out*v + c[i]
	}
	return out
}
