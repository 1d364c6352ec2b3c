package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"investtrack/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultFreshnessWindow = 15 * time.Minute

// Refresher produces a current StockQuote for one symbol with the minimum
// necessary provider work: cached records within the freshness window are
// served as-is, everything else goes through the fetch gate to the provider,
// falling back to the stale cached record when the live call fails.
type Refresher struct {
	store    QuoteStore
	provider MarketProvider
	gate     FetchGate
	window   time.Duration
	clock    Clock
	log      *zap.Logger
}

type RefresherOption func(*Refresher)

func WithClock(c Clock) RefresherOption { return func(r *Refresher) { r.clock = c } }

func WithFreshnessWindow(w time.Duration) RefresherOption {
	return func(r *Refresher) { r.window = w }
}

func WithLogger(l *zap.Logger) RefresherOption { return func(r *Refresher) { r.log = l } }

func NewRefresher(store QuoteStore, provider MarketProvider, gate FetchGate, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		store:    store,
		provider: provider,
		gate:     gate,
		window:   DefaultFreshnessWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = realClock{}
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// Refresh returns the quote for symbol. fresh is true when the returned
// record is within the freshness window; a stale-fallback result reports
// fresh=false with a nil error. Provider failures surface only when no
// cached record exists; store failures always surface.
func (r *Refresher) Refresh(ctx context.Context, symbol string) (domain.StockQuote, bool, error) {
	sym := domain.NormalizeSymbol(symbol)
	if !domain.ValidateSymbol(sym) {
		return domain.StockQuote{}, false, fmt.Errorf("%q: %w", symbol, domain.ErrInvalidSymbol)
	}

	cached, err := r.store.Get(ctx, sym)
	haveCache := err == nil
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.StockQuote{}, false, fmt.Errorf("quote store get %s: %w", sym, err)
	}
	if haveCache && !cached.IsStale(r.window, r.clock.Now()) {
		return cached, true, nil
	}

	patch, err := r.fetch(ctx, sym)
	if err != nil {
		if errors.Is(err, domain.ErrProviderRateLimited) {
			r.log.Warn("provider_rate_limited", zap.String("symbol", sym), zap.Error(err))
		} else {
			r.log.Warn("provider_fetch_failed", zap.String("symbol", sym), zap.Error(err))
		}
		if haveCache {
			r.log.Info("stale_fallback", zap.String("symbol", sym), zap.Time("last_updated", cached.LastUpdated))
			return cached, false, nil
		}
		return domain.StockQuote{}, false, err
	}

	updated, err := r.store.Upsert(ctx, patch)
	if err != nil {
		return domain.StockQuote{}, false, fmt.Errorf("quote store upsert %s: %w", sym, err)
	}
	return updated, true, nil
}

// fetch acquires the gate and issues the quote and overview lookups
// concurrently. The overview call is opportunistic: its failure only drops
// the descriptive fields from the patch. A failed quote call fails the fetch.
func (r *Refresher) fetch(ctx context.Context, sym string) (domain.QuotePatch, error) {
	if err := r.gate.Acquire(ctx); err != nil {
		return domain.QuotePatch{}, fmt.Errorf("fetch gate: %w: %w", domain.ErrProviderUnavailable, err)
	}

	var (
		snap     domain.QuoteSnapshot
		overview domain.CompanyOverview
		quoteErr error
		ovErr    error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, quoteErr = r.provider.GlobalQuote(gctx, sym)
		return nil
	})
	g.Go(func() error {
		overview, ovErr = r.provider.Overview(gctx, sym)
		return nil
	})
	_ = g.Wait()

	if quoteErr != nil {
		return domain.QuotePatch{}, fmt.Errorf("global quote %s: %w", sym, quoteErr)
	}

	patch := domain.QuotePatch{
		Symbol:        sym,
		Price:         snap.Price,
		PreviousClose: snap.PreviousClose,
		Change:        snap.Change,
		ChangePercent: snap.ChangePercent,
		Volume:        snap.Volume,
		LastUpdated:   r.clock.Now(),
	}
	if ovErr != nil {
		r.log.Debug("overview_skipped", zap.String("symbol", sym), zap.Error(ovErr))
		return patch, nil
	}
	patch.CompanyName = overview.CompanyName
	patch.Sector = overview.Sector
	patch.Industry = overview.Industry
	patch.MarketCap = overview.MarketCap
	patch.PERatio = overview.PERatio
	patch.DividendYield = overview.DividendYield
	patch.WeekHigh52 = overview.WeekHigh52
	patch.WeekLow52 = overview.WeekLow52
	patch.Beta = overview.Beta
	patch.EPS = overview.EPS
	return patch, nil
}
