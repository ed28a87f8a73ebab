// Package stationarity runs the augmented Dickey-Fuller unit-root test on a spread.
// The regression has no constant and no trend; the lag is chosen by AIC.
package stationarity

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInsufficientData is returned when the series is too short for the lag search.
var ErrInsufficientData = errors.New("adf: series too short")

// Critical value keys.
const (
	Crit1  = "1%"
	Crit5  = "5%"
	Crit10 = "10%"
)

// Result of the test.
type Result struct {
	Statistic      float64
	PValue         float64
	UsedLag        int
	NObs           int
	CriticalValues map[string]float64
	ICBest         float64
}

// ADF tests series for a unit root. NaN and infinite values are dropped first.
func ADF(series []float64) (*Result, error) {
	x := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			x = append(x, v)
		}
	}
	n := len(x)
	maxlag := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	if c := n/2 - 1; c < maxlag {
		maxlag = c
	}
	if maxlag < 0 {
		return nil, fmt.Errorf("%w: %d points", ErrInsufficientData, n)
	}

	xdiff := make([]float64, n-1)
	for i := range xdiff {
		xdiff[i] = x[i+1] - x[i]
	}
	if len(xdiff)-maxlag <= maxlag+1 {
		return nil, fmt.Errorf("%w: %d points for maxlag %d", ErrInsufficientData, n, maxlag)
	}

	// Lag search over a common sample: columns [level, dlag1..dlag maxlag].
	design, target := lagDesign(x, xdiff, maxlag)
	bestAIC, bestCols := math.Inf(1), 1
	for cols := 1; cols <= maxlag+1; cols++ {
		fit, err := ols(design, target, cols)
		if err != nil {
			return nil, fmt.Errorf("adf lag search: %w", err)
		}
		if fit.aic < bestAIC {
			bestAIC, bestCols = fit.aic, cols
		}
	}
	usedLag := bestCols - 1

	design, target = lagDesign(x, xdiff, usedLag)
	fit, err := ols(design, target, usedLag+1)
	if err != nil {
		return nil, fmt.Errorf("adf: %w", err)
	}
	stat := fit.beta[0] / fit.se0
	nobs := len(target)
	return &Result{
		Statistic:      stat,
		PValue:         MacKinnonP(stat),
		UsedLag:        usedLag,
		NObs:           nobs,
		CriticalValues: MacKinnonCrit(nobs),
		ICBest:         bestAIC,
	}, nil
}

// lagDesign builds rows t = lag..len(xdiff)-1 of [x[t], xdiff[t-1], ..., xdiff[t-lag]] with target xdiff[t].
func lagDesign(x, xdiff []float64, lag int) ([][]float64, []float64) {
	rows := len(xdiff) - lag
	design := make([][]float64, rows)
	target := make([]float64, rows)
	for r := 0; r < rows; r++ {
		t := r + lag
		row := make([]float64, lag+1)
		row[0] = x[t]
		for j := 1; j <= lag; j++ {
			row[j] = xdiff[t-j]
		}
		design[r] = row
		target[r] = xdiff[t]
	}
	return design, target
}

type olsFit struct {
	beta []float64
	se0  float64
	aic  float64
}

// ols regresses target on the first cols columns of design without an intercept.
func ols(design [][]float64, target []float64, cols int) (olsFit, error) {
	rows := len(target)
	if rows <= cols {
		return olsFit{}, fmt.Errorf("%w: %d rows for %d regressors", ErrInsufficientData, rows, cols)
	}
	X := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			X.Set(r, c, design[r][c])
		}
	}
	y := mat.NewVecDense(rows, target)

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return olsFit{}, fmt.Errorf("singular design: %w", err)
	}
	var xty mat.VecDense
	xty.MulVec(X.T(), y)
	var beta mat.VecDense
	beta.MulVec(&inv, &xty)

	var ssr float64
	for r := 0; r < rows; r++ {
		var f float64
		for c := 0; c < cols; c++ {
			f += design[r][c] * beta.AtVec(c)
		}
		e := target[r] - f
		ssr += e * e
	}
	nf := float64(rows)
	sigma2 := ssr / float64(rows-cols)
	out := olsFit{
		beta: make([]float64, cols),
		se0:  math.Sqrt(sigma2 * inv.At(0, 0)),
		aic:  nf*math.Log(2*math.Pi) + nf*math.Log(ssr/nf) + nf + 2*float64(cols),
	}
	for c := 0; c < cols; c++ {
		out.beta[c] = beta.AtVec(c)
	}
	return out, nil
}
