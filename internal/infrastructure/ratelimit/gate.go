package ratelimit

import (
	"context"
	"sync"
	"time"

	"investtrack/internal/application"
)

var _ application.FetchGate = (*IntervalGate)(nil)

// IntervalGate enforces a minimum spacing between outbound provider calls,
// process-wide. Concurrent Acquire calls are serialized: each grant records
// its time under the lock before the caller proceeds, so a burst of callers
// drains one grant per interval instead of passing through together.
type IntervalGate struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewIntervalGate(interval time.Duration) *IntervalGate {
	return &IntervalGate{interval: interval}
}

// Acquire blocks until one request may be issued, or the context ends.
func (g *IntervalGate) Acquire(ctx context.Context) error {
	if g.interval <= 0 {
		return ctx.Err()
	}
	for {
		g.mu.Lock()
		now := time.Now()
		wait := g.last.Add(g.interval).Sub(now)
		if wait <= 0 {
			g.last = now
			g.mu.Unlock()
			return nil
		}
		g.mu.Unlock()

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
