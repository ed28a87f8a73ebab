package backtest

import (
	"fmt"
	"time"

	"PairScope/internal/services/signals"
)

// Pair computes the detector's values over (x, y) and runs the policy over them.
func Pair(d signals.Detector, policy signals.Policy, x, y []float64, times []time.Time) (*Result, error) {
	values, err := d.Series(x, y)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", d.Name(), err)
	}
	return Run(policy, Input{Values: values, X: x, Y: y, Times: times})
}
