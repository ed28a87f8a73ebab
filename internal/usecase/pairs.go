package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
)

// legs is an index-aligned pair of price histories.
type legs struct {
	a, b models.PriceSeries
}

// fetchLegs loads both symbols and checks that they can be matched by index.
func fetchLegs(ctx context.Context, prices drepo.PriceProvider, a, b string) (legs, error) {
	sa, err := prices.Fetch(ctx, a)
	if err != nil {
		return legs{}, err
	}
	sb, err := prices.Fetch(ctx, b)
	if err != nil {
		return legs{}, err
	}
	if sa.Len() != sb.Len() {
		return legs{}, fmt.Errorf("%s has %d bars, %s has %d: %w", a, sa.Len(), b, sb.Len(), models.ErrDataLengthMismatch)
	}
	return legs{a: sa, b: sb}, nil
}

// times returns the bar times of the first leg that has any.
func (l legs) times() []time.Time {
	if l.a.Len() > 0 {
		return l.a.Times()
	}
	return l.b.Times()
}

func newRunID() string { return uuid.NewString() }

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
