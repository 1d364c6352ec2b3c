package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"investtrack/internal/application"
)

// RefreshWorker periodically re-warms the quote cache for every symbol held
// in a portfolio plus the popular universe. Each tick goes through the
// refresher, so the fetch gate's pacing and the per-symbol failure isolation
// apply unchanged.
type RefreshWorker struct {
	Refresher *application.Refresher
	Positions application.PositionRepo

	PollEvery  time.Duration
	BatchLimit int
	Log        *zap.Logger
}

func (w *RefreshWorker) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.PollEvery <= 0 {
		w.PollEvery = 15 * time.Minute
	}
	if w.BatchLimit <= 0 {
		w.BatchLimit = application.DefaultMaxBatchSymbols
	}

	t := time.NewTicker(w.PollEvery)
	defer t.Stop()

	log.Info("refresh_worker_started", zap.Duration("poll_every", w.PollEvery))
	for {
		select {
		case <-ctx.Done():
			log.Info("refresh_worker_stopped")
			return
		case <-t.C:
			w.tick(ctx, log)
		}
	}
}

func (w *RefreshWorker) tick(ctx context.Context, log *zap.Logger) {
	symbols := w.universe(ctx, log)
	if len(symbols) == 0 {
		return
	}
	res := w.Refresher.BatchRefresh(ctx, symbols)
	log.Info("refresh_tick_done",
		zap.Int("refreshed", len(res.Succeeded)),
		zap.Int("failed", len(res.Failed)),
	)
}

// universe is held symbols first, topped up with popular ones, capped at the
// batch limit so a single tick stays bounded.
func (w *RefreshWorker) universe(ctx context.Context, log *zap.Logger) []string {
	held, err := w.Positions.DistinctSymbols(ctx)
	if err != nil {
		log.Warn("distinct_symbols_failed", zap.Error(err))
		held = nil
	}
	seen := make(map[string]struct{}, len(held))
	out := make([]string, 0, w.BatchLimit)
	for _, s := range held {
		if len(out) >= w.BatchLimit {
			return out
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range application.PopularSymbols {
		if len(out) >= w.BatchLimit {
			break
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
