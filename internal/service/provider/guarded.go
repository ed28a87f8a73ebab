// Package provider decorates a PriceProvider with caching, pacing, a circuit breaker and metrics.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sony/gobreaker"

	"PairScope/internal/domain/models"
	"PairScope/internal/domain/repository"
	"PairScope/internal/service/ratelimit"
	"PairScope/pkg/cache"
	"PairScope/pkg/logger"
	"PairScope/pkg/metrics"
)

// ErrCircuitOpen is returned while the breaker rejects calls. It also matches models.ErrProviderUnavailable.
var ErrCircuitOpen = errors.New("price provider circuit open")

const (
	outcomeHit   = "hit"
	outcomeMiss  = "miss"
	outcomeError = "error"
)

// cachedSeries carries NaN closes as nulls, which encoding/json cannot emit as numbers.
type cachedSeries struct {
	Symbol string     `json:"symbol"`
	Times  []int64    `json:"times"`
	Closes []*float64 `json:"closes"`
}

func toCached(s models.PriceSeries) cachedSeries {
	c := cachedSeries{Symbol: s.Symbol, Times: make([]int64, len(s.Points)), Closes: make([]*float64, len(s.Points))}
	for i, p := range s.Points {
		c.Times[i] = p.Time.Unix()
		if !math.IsNaN(p.Close) && !math.IsInf(p.Close, 0) {
			v := p.Close
			c.Closes[i] = &v
		}
	}
	return c
}

func (c cachedSeries) series() models.PriceSeries {
	s := models.PriceSeries{Symbol: c.Symbol, Points: make([]models.PricePoint, len(c.Times))}
	for i, ts := range c.Times {
		v := math.NaN()
		if i < len(c.Closes) && c.Closes[i] != nil {
			v = *c.Closes[i]
		}
		s.Points[i] = models.PricePoint{Time: time.Unix(ts, 0).UTC(), Close: v}
	}
	return s
}

// Guarded wraps an upstream provider. Cache hits skip pacing and the breaker.
type Guarded struct {
	name      string
	next      repository.PriceProvider
	cache     cache.Service
	ttl       time.Duration
	keyParams []interface{}
	limiter   *ratelimit.Limiter
	breaker   *gobreaker.CircuitBreaker
	metrics   repository.Metrics
	log       *logger.Logger
}

type Option func(*Guarded)

// WithCache stores fetched series for ttl. keyParams distinguish lookback and interval settings.
func WithCache(c cache.Service, ttl time.Duration, keyParams ...interface{}) Option {
	return func(g *Guarded) {
		g.cache = c
		g.ttl = ttl
		g.keyParams = keyParams
	}
}

// WithMinInterval paces upstream calls at least d apart.
func WithMinInterval(d time.Duration) Option {
	return func(g *Guarded) { g.limiter = ratelimit.New(d) }
}

// WithBreaker trips after threshold consecutive upstream failures and stays open for openTimeout.
func WithBreaker(threshold uint32, openTimeout time.Duration) Option {
	return func(g *Guarded) {
		g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    g.name,
			Timeout: openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !errors.Is(err, models.ErrProviderUnavailable)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				g.metrics.RecordBreakerState(name, int(to))
				g.log.Warn("provider breaker state change",
					logger.String("name", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			},
		})
	}
}

func WithMetrics(m repository.Metrics) Option { return func(g *Guarded) { g.metrics = m } }

func WithLogger(l *logger.Logger) Option { return func(g *Guarded) { g.log = l } }

// NewGuarded wraps next. The name labels the breaker and the limiter bucket.
// Options are applied in order, so WithMetrics and WithLogger should precede WithBreaker.
func NewGuarded(name string, next repository.PriceProvider, opts ...Option) *Guarded {
	g := &Guarded{
		name:    name,
		next:    next,
		metrics: metrics.Nop{},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ repository.PriceProvider = (*Guarded)(nil)

// Fetch serves symbol from cache or upstream.
func (g *Guarded) Fetch(ctx context.Context, symbol string) (models.PriceSeries, error) {
	start := time.Now()
	defer func() { g.metrics.RecordLatency("fetch", time.Since(start).Seconds()) }()

	key := cache.GenerateKeyWithParams("prices", append([]interface{}{symbol}, g.keyParams...)...)
	if g.cache != nil {
		c, err := cache.GetJSON[cachedSeries](ctx, g.cache, key)
		if err == nil {
			g.metrics.RecordFetch(symbol, outcomeHit)
			return c.series(), nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			g.log.Warn("price cache read failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx, g.name); err != nil {
			return models.PriceSeries{}, fmt.Errorf("fetch %s: %w", symbol, err)
		}
	}

	s, err := g.upstream(ctx, symbol)
	if err != nil {
		g.metrics.RecordFetch(symbol, outcomeError)
		g.metrics.RecordError("fetch")
		return models.PriceSeries{}, err
	}
	g.metrics.RecordFetch(symbol, outcomeMiss)

	if g.cache != nil {
		if err := cache.SetJSON(ctx, g.cache, key, toCached(s), g.ttl); err != nil {
			g.log.Warn("price cache write failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}
	return s, nil
}

func (g *Guarded) upstream(ctx context.Context, symbol string) (models.PriceSeries, error) {
	if g.breaker == nil {
		return g.next.Fetch(ctx, symbol)
	}
	v, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Fetch(ctx, symbol)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return models.PriceSeries{}, fmt.Errorf("fetch %s: %w: %w", symbol, ErrCircuitOpen, models.ErrProviderUnavailable)
	}
	if err != nil {
		return models.PriceSeries{}, err
	}
	return v.(models.PriceSeries), nil
}
