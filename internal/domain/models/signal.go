package models

// Signal is the per-bar regime classification of a pair.
type Signal string

const (
	SignalLong  Signal = "LONG"
	SignalShort Signal = "SHORT"
	SignalNone  Signal = "NOSIG"
)

// IsEntry reports whether the signal opens a position.
func (s Signal) IsEntry() bool { return s == SignalLong || s == SignalShort }

// Detector names used as trade-type prefixes in reports.
const (
	DetectorM1 = "M1"
	DetectorM2 = "M2"
)
