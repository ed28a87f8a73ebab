package regression

import (
	"fmt"

	"PairScope/internal/domain/models"
)

// Orientation is one way of regressing a pair: Y on X.
type Orientation struct {
	XSymbol  string
	YSymbol  string
	X        []float64
	Y        []float64
	Result   *Result
	ErrRatio float64
}

// Pair returns the "Y_X" identifier.
func (o Orientation) Pair() string { return models.PairName(o.YSymbol, o.XSymbol) }

// Selection holds both candidate orientations and the chosen one.
type Selection struct {
	Candidates [2]Orientation
	Chosen     int
}

// Canonical is the orientation used downstream.
func (s *Selection) Canonical() Orientation { return s.Candidates[s.Chosen] }

// SelectPair fits (x=a, y=b) and (x=b, y=a) and keeps the orientation with the smaller
// intercept stderr to residual stdev ratio. Ties and NaN keep the first.
func SelectPair(aSym string, a []float64, bSym string, b []float64) (*Selection, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("select pair %s/%s: %w", aSym, bSym, models.ErrDataLengthMismatch)
	}
	first, err := orient(aSym, a, bSym, b)
	if err != nil {
		return nil, fmt.Errorf("select pair %s/%s: %w", aSym, bSym, err)
	}
	second, err := orient(bSym, b, aSym, a)
	if err != nil {
		return nil, fmt.Errorf("select pair %s/%s: %w", bSym, aSym, err)
	}
	sel := &Selection{Candidates: [2]Orientation{first, second}}
	if second.ErrRatio < first.ErrRatio {
		sel.Chosen = 1
	}
	return sel, nil
}

func orient(xSym string, x []float64, ySym string, y []float64) (Orientation, error) {
	res, err := Fit(x, y)
	if err != nil {
		return Orientation{}, err
	}
	return Orientation{
		XSymbol:  xSym,
		YSymbol:  ySym,
		X:        x,
		Y:        y,
		Result:   res,
		ErrRatio: res.InterceptStderr / res.ResidualStdev,
	}, nil
}
