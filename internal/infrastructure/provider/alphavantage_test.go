package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"investtrack/internal/domain"
	"investtrack/internal/infrastructure/httpx"
	"investtrack/internal/infrastructure/provider"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *provider.AlphaVantageProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &provider.AlphaVantageProvider{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Client:  &httpx.Client{HTTP: &http.Client{Timeout: 2 * time.Second}},
	}
}

func TestGlobalQuote_DecodesWireKeys(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		require.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		require.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "AAPL",
				"05. price": "185.5000",
				"06. volume": "52164500",
				"07. latest trading day": "2026-08-28",
				"08. previous close": "183.0700",
				"09. change": "2.4300",
				"10. change percent": "1.33%"
			}
		}`))
	})

	snap, err := p.GlobalQuote(context.Background(), "aapl")
	require.NoError(t, err)
	require.Equal(t, "AAPL", snap.Symbol)
	require.Equal(t, 185.5, snap.Price)
	require.NotNil(t, snap.PreviousClose)
	require.Equal(t, 183.07, *snap.PreviousClose)
	require.NotNil(t, snap.Change)
	require.Equal(t, 2.43, *snap.Change)
	require.NotNil(t, snap.ChangePercent)
	require.Equal(t, 1.33, *snap.ChangePercent)
	require.NotNil(t, snap.Volume)
	require.Equal(t, int64(52164500), *snap.Volume)
	require.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), snap.QuotedAt)
}

func TestGlobalQuote_NoteMeansRateLimited(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	})

	_, err := p.GlobalQuote(context.Background(), "AAPL")
	require.ErrorIs(t, err, domain.ErrProviderRateLimited)
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestGlobalQuote_InformationMeansRateLimited(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Information": "API rate limit exceeded"}`))
	})

	_, err := p.GlobalQuote(context.Background(), "AAPL")
	require.ErrorIs(t, err, domain.ErrProviderRateLimited)
}

func TestGlobalQuote_ErrorMessageMeansUnavailable(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	})

	_, err := p.GlobalQuote(context.Background(), "AAPL")
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
	require.False(t, errors.Is(err, domain.ErrProviderRateLimited))
}

func TestGlobalQuote_EmptyQuoteMeansSymbolNotFound(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {}}`))
	})

	_, err := p.GlobalQuote(context.Background(), "NOPE")
	require.ErrorIs(t, err, domain.ErrSymbolNotFound)
}

func TestGlobalQuote_ServerDownMeansUnavailable(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := p.GlobalQuote(context.Background(), "AAPL")
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestOverview_PlaceholdersDecodeToNil(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "OVERVIEW", r.URL.Query().Get("function"))
		w.Write([]byte(`{
			"Symbol": "AAPL",
			"Name": "Apple Inc",
			"Sector": "TECHNOLOGY",
			"Industry": "ELECTRONIC COMPUTERS",
			"MarketCapitalization": "2850000000000",
			"PERatio": "28.5",
			"DividendYield": "None",
			"52WeekHigh": "199.62",
			"52WeekLow": "",
			"Beta": "-",
			"EPS": "6.42"
		}`))
	})

	ov, err := p.Overview(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "AAPL", ov.Symbol)
	require.NotNil(t, ov.CompanyName)
	require.Equal(t, "Apple Inc", *ov.CompanyName)
	require.NotNil(t, ov.Sector)
	require.Equal(t, "TECHNOLOGY", *ov.Sector)
	require.NotNil(t, ov.MarketCap)
	require.Equal(t, int64(2850000000000), *ov.MarketCap)
	require.Nil(t, ov.DividendYield)
	require.Nil(t, ov.WeekLow52)
	require.Nil(t, ov.Beta)
	require.NotNil(t, ov.EPS)
	require.Equal(t, 6.42, *ov.EPS)
}

func TestOverview_EmptyBodyMeansSymbolNotFound(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := p.Overview(context.Background(), "NOPE")
	require.ErrorIs(t, err, domain.ErrSymbolNotFound)
}

func TestDisabled_AlwaysUnavailable(t *testing.T) {
	d := provider.Disabled{}

	_, err := d.GlobalQuote(context.Background(), "AAPL")
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)

	_, err = d.Overview(context.Background(), "AAPL")
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
