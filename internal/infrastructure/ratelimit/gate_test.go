package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquire_ZeroInterval_NeverWaits(t *testing.T) {
	t.Parallel()
	g := NewIntervalGate(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, g.Acquire(context.Background()))
	}
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAcquire_SerializesConcurrentCallers(t *testing.T) {
	t.Parallel()
	const (
		interval = 30 * time.Millisecond
		callers  = 4
	)
	g := NewIntervalGate(interval)

	var (
		mu     sync.Mutex
		grants []time.Time
		wg     sync.WaitGroup
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Acquire(context.Background()); err != nil {
				return
			}
			mu.Lock()
			grants = append(grants, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, grants, callers)
	sort.Slice(grants, func(i, j int) bool { return grants[i].Before(grants[j]) })
	for i := 1; i < len(grants); i++ {
		gap := grants[i].Sub(grants[i-1])
		// small tolerance for the gap between grant and timestamping
		require.GreaterOrEqual(t, gap, interval-5*time.Millisecond,
			"grants %d and %d only %v apart", i-1, i, gap)
	}
}

func TestAcquire_ContextCanceled(t *testing.T) {
	t.Parallel()
	g := NewIntervalGate(time.Hour)
	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
