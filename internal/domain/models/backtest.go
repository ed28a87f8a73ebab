package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NoTradeLabel is how an efficiency without trades is rendered.
const NoTradeLabel = "NO TRADE"

// Efficiency is either a percentage of profitable trades or NoTrade.
type Efficiency struct {
	value float64
	ok    bool
}

// NumericEfficiency wraps a percentage in [0, 100].
func NumericEfficiency(v float64) Efficiency { return Efficiency{value: v, ok: true} }

// NoTrade is the efficiency of a backtest that closed no trades.
func NoTrade() Efficiency { return Efficiency{} }

// Value returns the percentage and whether any trade was closed.
func (e Efficiency) Value() (float64, bool) { return e.value, e.ok }

func (e Efficiency) IsNoTrade() bool { return !e.ok }

// String renders the shortest decimal form, keeping ".0" on whole numbers (75.0, 100.0).
func (e Efficiency) String() string {
	if !e.ok {
		return NoTradeLabel
	}
	s := strconv.FormatFloat(e.value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (e Efficiency) MarshalJSON() ([]byte, error) {
	if !e.ok {
		return json.Marshal(NoTradeLabel)
	}
	return json.Marshal(e.value)
}

// Tally counts closed trades by outcome.
type Tally struct {
	Profit  int `json:"profit"`
	Loss    int `json:"loss"`
	Neutral int `json:"neutral"`
}

func (t Tally) Total() int { return t.Profit + t.Loss + t.Neutral }

// Add counts one outcome.
func (t *Tally) Add(o Outcome) {
	switch o {
	case OutcomeProfit:
		t.Profit++
	case OutcomeLoss:
		t.Loss++
	default:
		t.Neutral++
	}
}

// BacktestSummary is the per-detector result of one pair backtest.
type BacktestSummary struct {
	Pair       string     `json:"pair"`
	Detector   string     `json:"detector"`
	Efficiency Efficiency `json:"efficiency"`
	TradeCount int        `json:"trade_count"`
	Tally      Tally      `json:"tally"`
}
