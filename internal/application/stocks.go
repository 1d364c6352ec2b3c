package application

import (
	"context"
	"errors"
	"fmt"

	"investtrack/internal/domain"
)

// PopularSymbols is the default tracked universe, used by the popular-stocks
// endpoint and as seed input for batch refreshes.
var PopularSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA",
	"META", "NVDA", "NFLX", "DIS", "V",
	"JPM", "JNJ", "WMT", "PG", "UNH",
	"HD", "MA", "BAC", "XOM", "CVX",
}

const (
	DefaultMaxBatchSymbols = 20
	defaultSearchLimit     = 10
	maxListLimit           = 100
)

// StockService bridges the stock read routes to the refresher and the cache.
type StockService struct {
	store     QuoteStore
	refresher *Refresher
	maxBatch  int
}

func NewStockService(store QuoteStore, refresher *Refresher, maxBatch int) *StockService {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSymbols
	}
	return &StockService{store: store, refresher: refresher, maxBatch: maxBatch}
}

// Quote returns the (possibly stale-fallback) quote for one symbol. When no
// cache exists and the provider cannot deliver, the symbol is reported as
// unknown rather than leaking the provider failure.
func (s *StockService) Quote(ctx context.Context, symbol string) (domain.StockQuote, bool, error) {
	q, fresh, err := s.refresher.Refresh(ctx, symbol)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSymbol) {
			return domain.StockQuote{}, false, err
		}
		if errors.Is(err, domain.ErrProviderUnavailable) || errors.Is(err, domain.ErrSymbolNotFound) {
			return domain.StockQuote{}, false, fmt.Errorf("%s: %w", domain.NormalizeSymbol(symbol), domain.ErrSymbolNotFound)
		}
		return domain.StockQuote{}, false, err
	}
	return q, fresh, nil
}

// Quotes refreshes up to maxBatch symbols with per-symbol failure isolation.
func (s *StockService) Quotes(ctx context.Context, symbols []string) (BatchResult, error) {
	if len(symbols) == 0 {
		return BatchResult{}, fmt.Errorf("%w: symbols required", ErrBadRequest)
	}
	if len(symbols) > s.maxBatch {
		return BatchResult{}, fmt.Errorf("%w: at most %d symbols per request", ErrBadRequest, s.maxBatch)
	}
	return s.refresher.BatchRefresh(ctx, symbols), nil
}

// MaxBatch exposes the configured batch ceiling for handlers.
func (s *StockService) MaxBatch() int { return s.maxBatch }

func (s *StockService) Search(ctx context.Context, term string, limit int) ([]domain.StockQuote, error) {
	if term == "" {
		return nil, fmt.Errorf("%w: search query required", ErrBadRequest)
	}
	return s.store.Search(ctx, term, clampLimit(limit, defaultSearchLimit))
}

func (s *StockService) Movers(ctx context.Context, gainers bool, limit int) ([]domain.StockQuote, error) {
	return s.store.TopMovers(ctx, gainers, clampLimit(limit, defaultSearchLimit))
}

func (s *StockService) BySector(ctx context.Context, sector string, limit int) ([]domain.StockQuote, error) {
	if sector == "" {
		return nil, fmt.Errorf("%w: sector required", ErrBadRequest)
	}
	return s.store.BySector(ctx, sector, clampLimit(limit, 20))
}

func (s *StockService) Sectors(ctx context.Context) ([]domain.SectorCount, error) {
	return s.store.Sectors(ctx)
}

// Popular lists cached records for the popular universe, ordered as stored.
func (s *StockService) Popular(ctx context.Context, limit int) ([]domain.StockQuote, error) {
	quotes, err := s.store.BySymbols(ctx, PopularSymbols)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, DefaultMaxBatchSymbols)
	if len(quotes) > limit {
		quotes = quotes[:limit]
	}
	return quotes, nil
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
