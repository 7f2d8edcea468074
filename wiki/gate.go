package wiki

import (
	"context"
	"sync"
	"time"
)

// Gate enforces a minimum delay between any two calls that pass
// through it, regardless of which client issues them. One token per
// interval, shared across goroutines.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewGate creates a gate with the given minimum interval. A zero or
// negative interval disables the gate.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Wait blocks until the interval since the previous call has elapsed,
// or the context is cancelled.
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil || g.interval <= 0 {
		return ctx.Err()
	}
	g.mu.Lock()
	now := time.Now()
	next := g.last.Add(g.interval)
	if next.Before(now) {
		next = now
	}
	g.last = next
	g.mu.Unlock()

	if wait := time.Until(next); wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
