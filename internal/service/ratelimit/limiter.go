package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. Each bucket admits one call per interval with no burst.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	m        map[string]*rate.Limiter
}

// New creates a limiter spacing calls at least interval apart per key. A non-positive interval disables pacing.
func New(interval time.Duration) *Limiter {
	return &Limiter{interval: interval, m: make(map[string]*rate.Limiter)}
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.m[key]
	if !ok {
		lim := rate.Inf
		if l.interval > 0 {
			lim = rate.Every(l.interval)
		}
		b = rate.NewLimiter(lim, 1)
		l.m[key] = b
	}
	return b
}

// Wait blocks until a call for key is admitted or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.bucket(key).Wait(ctx)
}

// Allow consumes a token for key without blocking.
func (l *Limiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}
