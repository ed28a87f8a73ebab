// Package signals turns a price pair into per-index LONG/SHORT/NOSIG classifications.
package signals

import (
	"math"

	"PairScope/internal/domain/models"
)

// Band is a closed interval. Infinite bounds express one-sided thresholds.
type Band struct {
	Lo float64
	Hi float64
}

// Contains reports Lo <= v <= Hi. NaN is never contained.
func (b Band) Contains(v float64) bool { return v >= b.Lo && v <= b.Hi }

// Outside reports v < Lo || v > Hi. NaN is never outside.
func (b Band) Outside(v float64) bool { return v < b.Lo || v > b.Hi }

// Policy is a named set of entry and hold thresholds applied to one detector's values.
type Policy struct {
	Name       string
	Detector   string
	EntryLong  Band
	EntryShort Band
	HoldLong   Band
	HoldShort  Band
}

// Entry classifies v with the entry bands.
func (p Policy) Entry(v float64) models.Signal {
	switch {
	case p.EntryLong.Contains(v):
		return models.SignalLong
	case p.EntryShort.Contains(v):
		return models.SignalShort
	default:
		return models.SignalNone
	}
}

// ShouldExit reports whether an open position in direction dir closes at value v.
func (p Policy) ShouldExit(dir models.Signal, v float64) bool {
	switch dir {
	case models.SignalLong:
		return p.HoldLong.Outside(v)
	case models.SignalShort:
		return p.HoldShort.Outside(v)
	default:
		return false
	}
}

// Classify applies Entry to every value.
func (p Policy) Classify(values []float64) []models.Signal {
	out := make([]models.Signal, len(values))
	for i, v := range values {
		out[i] = p.Entry(v)
	}
	return out
}

var (
	m1Long  = Band{Lo: 0.3, Hi: 2.5}
	m1Short = Band{Lo: 97.5, Hi: 99.7}
	m2Long  = Band{Lo: -3.0, Hi: -2.0}
	m2Short = Band{Lo: 2.0, Hi: 3.0}
)

// M1Policy holds while the percentile stays in its entry band.
var M1Policy = Policy{
	Name:       "m1",
	Detector:   models.DetectorM1,
	EntryLong:  m1Long,
	EntryShort: m1Short,
	HoldLong:   m1Long,
	HoldShort:  m1Short,
}

// M2Scan enters on one-sided thresholds. Used by the batch scan and batch backtest.
var M2Scan = Policy{
	Name:       "scan",
	Detector:   models.DetectorM2,
	EntryLong:  Band{Lo: math.Inf(-1), Hi: -2.5},
	EntryShort: Band{Lo: 2.5, Hi: math.Inf(1)},
	HoldLong:   m2Long,
	HoldShort:  m2Short,
}

// M2Bounded enters only inside [-3, -2.5] and [2.5, 3]. Used by the single-pair backtest.
var M2Bounded = Policy{
	Name:       "bounded",
	Detector:   models.DetectorM2,
	EntryLong:  Band{Lo: -3.0, Hi: -2.5},
	EntryShort: Band{Lo: 2.5, Hi: 3.0},
	HoldLong:   m2Long,
	HoldShort:  m2Short,
}

// M2PolicyByName resolves "scan" or "bounded".
func M2PolicyByName(name string) (Policy, bool) {
	switch name {
	case M2Scan.Name:
		return M2Scan, true
	case M2Bounded.Name:
		return M2Bounded, true
	default:
		return Policy{}, false
	}
}
