package application

import (
	"context"
	"testing"
	"time"

	"investtrack/internal/domain"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestRefresher(store *fakeQuoteStore, provider *fakeProvider, gate *fakeGate) *Refresher {
	return NewRefresher(store, provider, gate, WithClock(fakeClock{t: testNow}))
}

func Test_Refresh_FreshCache_NoProviderCall(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(domain.StockQuote{
		Symbol: "AAPL", Price: 180, LastUpdated: testNow.Add(-14 * time.Minute),
	})
	provider := &fakeProvider{}
	gate := &fakeGate{}

	q, fresh, err := newTestRefresher(store, provider, gate).Refresh(context.Background(), "aapl")
	require.NoError(t, err)
	require.True(t, fresh)
	require.InDelta(t, 180.0, q.Price, 1e-9)
	require.Zero(t, provider.quoteCalls)
	require.Zero(t, gate.acquired)
}

func Test_Refresh_StaleCache_FetchesAndUpserts(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(domain.StockQuote{
		Symbol: "AAPL", Price: 180, LastUpdated: testNow.Add(-15*time.Minute - time.Second),
	})
	provider := &fakeProvider{
		snaps: map[string]domain.QuoteSnapshot{
			"AAPL": {Symbol: "AAPL", Price: 185.5, Change: f64Ptr(1.2)},
		},
	}
	gate := &fakeGate{}

	q, fresh, err := newTestRefresher(store, provider, gate).Refresh(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, fresh)
	require.InDelta(t, 185.5, q.Price, 1e-9)
	require.Equal(t, testNow, q.LastUpdated)
	require.Equal(t, 1, provider.quoteCalls)
	require.Equal(t, 1, provider.ovCalls)
	require.Equal(t, 1, gate.acquired)
	require.Equal(t, 1, store.upserts)
}

func Test_Refresh_ProviderDown_StaleFallback(t *testing.T) {
	t.Parallel()
	stale := domain.StockQuote{
		Symbol: "AAPL", Price: 180, Sector: strPtr("Technology"),
		LastUpdated: testNow.Add(-time.Hour),
	}
	store := newFakeQuoteStore(stale)
	provider := &fakeProvider{quoteErr: domain.ErrProviderUnavailable}

	q, fresh, err := newTestRefresher(store, provider, &fakeGate{}).Refresh(context.Background(), "AAPL")
	require.NoError(t, err)
	require.False(t, fresh)
	require.Equal(t, stale, q)
	require.Zero(t, store.upserts)
}

func Test_Refresh_ProviderDown_NoCache_Fails(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore()
	provider := &fakeProvider{quoteErr: domain.ErrProviderUnavailable}

	_, _, err := newTestRefresher(store, provider, &fakeGate{}).Refresh(context.Background(), "AAPL")
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func Test_Refresh_RateLimited_MatchesUnavailable(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore()
	provider := &fakeProvider{quoteErr: domain.ErrProviderRateLimited}

	_, _, err := newTestRefresher(store, provider, &fakeGate{}).Refresh(context.Background(), "AAPL")
	require.ErrorIs(t, err, domain.ErrProviderRateLimited)
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func Test_Refresh_OverviewFails_QuoteStillUsed(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(domain.StockQuote{
		Symbol:      "AAPL",
		Price:       180,
		Sector:      strPtr("Technology"),
		Industry:    strPtr("Consumer Electronics"),
		LastUpdated: testNow.Add(-time.Hour),
	})
	provider := &fakeProvider{
		snaps: map[string]domain.QuoteSnapshot{"AAPL": {Symbol: "AAPL", Price: 185.5}},
		ovErr: domain.ErrProviderUnavailable,
	}

	q, fresh, err := newTestRefresher(store, provider, &fakeGate{}).Refresh(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, fresh)
	require.InDelta(t, 185.5, q.Price, 1e-9)
	// previously stored overview fields survive the quote-only refresh
	require.NotNil(t, q.Sector)
	require.Equal(t, "Technology", *q.Sector)
	require.Equal(t, "Consumer Electronics", *q.Industry)
}

func Test_Refresh_StoreFailure_Propagates(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore()
	store.err = ErrRepo

	_, _, err := newTestRefresher(store, &fakeProvider{}, &fakeGate{}).Refresh(context.Background(), "AAPL")
	require.ErrorIs(t, err, ErrRepo)
}

func Test_Refresh_InvalidSymbol(t *testing.T) {
	t.Parallel()
	_, _, err := newTestRefresher(newFakeQuoteStore(), &fakeProvider{}, &fakeGate{}).Refresh(context.Background(), "not a symbol")
	require.ErrorIs(t, err, domain.ErrInvalidSymbol)
}

func Test_BatchRefresh_IsolatesFailures(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore()
	provider := &fakeProvider{
		snaps: map[string]domain.QuoteSnapshot{
			"AAPL": {Symbol: "AAPL", Price: 185},
			"CVX":  {Symbol: "CVX", Price: 160},
		},
		failSymbols: map[string]error{"MSFT": domain.ErrProviderUnavailable},
	}

	res := newTestRefresher(store, provider, &fakeGate{}).BatchRefresh(context.Background(), []string{"AAPL", "MSFT", "CVX"})
	require.Len(t, res.Succeeded, 2)
	require.Equal(t, "AAPL", res.Succeeded[0].Symbol)
	require.Equal(t, "CVX", res.Succeeded[1].Symbol)
	require.Len(t, res.Failed, 1)
	require.Equal(t, "MSFT", res.Failed[0].Symbol)
	require.ErrorIs(t, res.Failed[0].Err, domain.ErrProviderUnavailable)
}

func Test_BatchRefresh_Dedupes(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore()
	provider := &fakeProvider{}

	res := newTestRefresher(store, provider, &fakeGate{}).BatchRefresh(context.Background(), []string{"AAPL", "aapl", " AAPL "})
	require.Len(t, res.Succeeded, 1)
	require.Equal(t, 1, provider.quoteCalls)
}
