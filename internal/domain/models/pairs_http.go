package models

// Requests for pair HTTP endpoints.

type PairRequest struct {
	Y string `query:"y" json:"y" validate:"required,symbol"`
	X string `query:"x" json:"x" validate:"required,symbol,nefield=Y"`
}

type PairBacktestRequest struct {
	Y string `query:"y" json:"y" validate:"required,symbol"`
	X string `query:"x" json:"x" validate:"required,symbol,nefield=Y"`
	// Policy selects the M2 entry policy.
	Policy string `query:"policy" json:"policy" default:"bounded" validate:"oneof=bounded scan"`
}
