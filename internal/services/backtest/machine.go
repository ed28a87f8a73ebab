// Package backtest replays a detector's values through the trade life cycle.
package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"PairScope/internal/domain/models"
	"PairScope/internal/services/signals"
	"PairScope/internal/services/sizing"
)

type state int

const (
	flat state = iota
	openLong
	openShort
)

// Input is an index-aligned pair with one detector value per index.
// Times may be nil.
type Input struct {
	Values []float64
	X      []float64
	Y      []float64
	Times  []time.Time
}

// Result holds closed trades in order of entry.
type Result struct {
	Trades     []models.Trade
	Tally      models.Tally
	Efficiency models.Efficiency
}

// Summary condenses the result for reports.
func (r *Result) Summary(pair, detector string) models.BacktestSummary {
	return models.BacktestSummary{
		Pair:       pair,
		Detector:   detector,
		Efficiency: r.Efficiency,
		TradeCount: len(r.Trades),
		Tally:      r.Tally,
	}
}

// Machine is the per-pair position state. The zero value is not usable; see newMachine.
type Machine struct {
	policy     signals.Policy
	state      state
	entryIndex int
	entryX     float64
	entryY     float64
	qty        sizing.Quantities
}

func newMachine(p signals.Policy) *Machine { return &Machine{policy: p} }

// Run walks every index once. Entry and exit are both evaluated on the entry index.
// No position is closed at an index with a missing price. A position still open after the last index is discarded.
func Run(policy signals.Policy, in Input) (*Result, error) {
	n := len(in.Values)
	if len(in.X) != n || len(in.Y) != n || (in.Times != nil && len(in.Times) != n) {
		return nil, fmt.Errorf("backtest %s: %w", policy.Detector, models.ErrDataLengthMismatch)
	}
	m := newMachine(policy)
	res := &Result{}
	for i, v := range in.Values {
		if err := m.step(i, v, in, res); err != nil {
			return nil, err
		}
	}
	res.Efficiency = ComputeEfficiency(res.Tally.Profit, res.Tally.Loss, res.Tally.Neutral)
	return res, nil
}

func (m *Machine) step(i int, v float64, in Input, res *Result) error {
	if m.state == flat {
		switch m.policy.Entry(v) {
		case models.SignalLong:
			if err := m.open(openLong, i, in); err != nil {
				return err
			}
		case models.SignalShort:
			if err := m.open(openShort, i, in); err != nil {
				return err
			}
		}
	}
	if m.state != flat && m.policy.ShouldExit(m.direction(), v) && priced(in.X[i], in.Y[i]) {
		t := m.close(i, in)
		res.Trades = append(res.Trades, t)
		res.Tally.Add(t.Outcome)
	}
	return nil
}

func (m *Machine) open(s state, i int, in Input) error {
	q, err := sizing.Hedge(in.X[i], in.Y[i])
	if err != nil {
		return fmt.Errorf("backtest %s open at %d: %w", m.policy.Detector, i, err)
	}
	m.state = s
	m.entryIndex = i
	m.entryX = in.X[i]
	m.entryY = in.Y[i]
	m.qty = q
	return nil
}

func (m *Machine) close(i int, in Input) models.Trade {
	dir := m.direction()
	pnl := Measure(dir, m.entryX, m.entryY, in.X[i], in.Y[i], m.qty)
	t := models.Trade{
		Detector:   m.policy.Detector,
		Direction:  dir,
		EntryIndex: m.entryIndex,
		ExitIndex:  i,
		EntryX:     m.entryX,
		EntryY:     m.entryY,
		ExitX:      in.X[i],
		ExitY:      in.Y[i],
		XQty:       m.qty.X,
		YQty:       m.qty.Y,
		PnL:        pnl,
		Outcome:    models.OutcomeOf(pnl),
	}
	if in.Times != nil {
		t.EntryTime = in.Times[m.entryIndex]
		t.ExitTime = in.Times[i]
	}
	m.state = flat
	return t
}

// priced reports whether both legs have a usable fill price.
func priced(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}

func (m *Machine) direction() models.Signal {
	switch m.state {
	case openLong:
		return models.SignalLong
	case openShort:
		return models.SignalShort
	default:
		return models.SignalNone
	}
}

// Measure is the P/L of a closed pair position. LONG buys Y and sells X; SHORT is the reverse.
func Measure(dir models.Signal, x1, y1, x2, y2 float64, q sizing.Quantities) decimal.Decimal {
	dx := decimal.NewFromFloat(x2).Sub(decimal.NewFromFloat(x1))
	dy := decimal.NewFromFloat(y2).Sub(decimal.NewFromFloat(y1))
	yLeg := dy.Mul(decimal.NewFromInt(q.Y))
	xLeg := dx.Mul(decimal.NewFromInt(q.X))
	if dir == models.SignalShort {
		return xLeg.Sub(yLeg)
	}
	return yLeg.Sub(xLeg)
}

// ComputeEfficiency is the share of profitable trades as a percentage, or NoTrade.
func ComputeEfficiency(profit, loss, neutral int) models.Efficiency {
	total := profit + loss + neutral
	if total == 0 {
		return models.NoTrade()
	}
	return models.NumericEfficiency(100 * float64(profit) / float64(total))
}
