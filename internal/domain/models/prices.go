package models

import (
	"math"
	"time"
)

// PricePoint is one daily close.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered close-price history for one symbol.
// Missing closes are carried as NaN so index alignment with another series is preserved.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

func (s PriceSeries) Len() int { return len(s.Points) }

// Closes returns the close prices in index order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Times returns the bar timestamps in index order.
func (s PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Time
	}
	return out
}

// Valid reports whether every close is finite and positive.
func (s PriceSeries) Valid() bool {
	for _, p := range s.Points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			return false
		}
	}
	return true
}
