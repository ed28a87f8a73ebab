package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome classifies a closed trade by the sign of its P/L measure.
type Outcome string

const (
	OutcomeProfit  Outcome = "PROFIT"
	OutcomeLoss    Outcome = "LOSS"
	OutcomeNeutral Outcome = "NEUTRAL"
)

// OutcomeOf maps a P/L measure to its outcome.
func OutcomeOf(pnl decimal.Decimal) Outcome {
	switch pnl.Sign() {
	case 1:
		return OutcomeProfit
	case -1:
		return OutcomeLoss
	default:
		return OutcomeNeutral
	}
}

// Trade is a closed position. Open positions are never materialized as trades.
type Trade struct {
	Detector   string          `json:"detector"`
	Direction  Signal          `json:"direction"`
	EntryIndex int             `json:"entry_index"`
	ExitIndex  int             `json:"exit_index"`
	EntryTime  time.Time       `json:"entry_time"`
	ExitTime   time.Time       `json:"exit_time"`
	EntryX     float64         `json:"entry_x"`
	EntryY     float64         `json:"entry_y"`
	ExitX      float64         `json:"exit_x"`
	ExitY      float64         `json:"exit_y"`
	XQty       int64           `json:"x_qty"`
	YQty       int64           `json:"y_qty"`
	PnL        decimal.Decimal `json:"pnl"`
	Outcome    Outcome         `json:"outcome"`
}

// SignalType renders the report label, e.g. "M2_LONG".
func (t Trade) SignalType() string {
	return t.Detector + "_" + string(t.Direction)
}
