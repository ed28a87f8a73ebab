package service

import (
	"context"

	"PairScope/internal/domain/models"
)

// PairAnalyzer produces the regression and stationarity report of one pair.
type PairAnalyzer interface {
	Analyze(ctx context.Context, a, b string) (*models.PairAnalysis, error)
}

// PairBacktester replays both detectors over one pair. m2Policy is "bounded" or "scan".
type PairBacktester interface {
	Backtest(ctx context.Context, y, x, m2Policy string) (*models.PairBacktest, error)
}
