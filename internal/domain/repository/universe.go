package repository

import "context"

// PairRef names a pair by its two legs. Y is regressed on X.
type PairRef struct {
	Y string
	X string
}

// Universe provides the inputs of the batch modes.
type Universe interface {
	// Symbols returns the scan universe in file order.
	Symbols(ctx context.Context) ([]string, error)
	// Pairs returns the batch backtest list in file order.
	Pairs(ctx context.Context) ([]PairRef, error)
}
