package models

import "errors"

var (
	// ErrDataLengthMismatch is returned when two series that must be index-aligned differ in length.
	ErrDataLengthMismatch = errors.New("data length mismatch")
	// ErrUnknownSymbol is returned by a price provider when the symbol does not exist.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrProviderUnavailable is returned by a price provider on transport or upstream failures.
	ErrProviderUnavailable = errors.New("price provider unavailable")
)
