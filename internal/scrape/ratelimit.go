package scrape

import (
	"context"
	"time"
)

// Limiter enforces a fixed minimum delay between the completion of one
// token's pipeline and the start of the next. The floor is literal:
// there is no adaptive throttling and no backoff.
type Limiter struct {
	delay time.Duration
}

// NewLimiter creates a limiter with the given fixed delay.
func NewLimiter(delay time.Duration) *Limiter {
	return &Limiter{delay: delay}
}

// Wait blocks for the full delay, or until the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(l.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
