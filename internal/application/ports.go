package application

import (
	"context"

	"investtrack/internal/domain"
)

// QuoteStore is the durable cache of the last known quote per symbol.
// Get returns domain.ErrNotFound when no record exists. Upsert merges the
// patch into the stored record atomically per symbol: nil patch fields keep
// their previously stored values.
type QuoteStore interface {
	Get(ctx context.Context, symbol string) (domain.StockQuote, error)
	Upsert(ctx context.Context, patch domain.QuotePatch) (domain.StockQuote, error)
	Search(ctx context.Context, term string, limit int) ([]domain.StockQuote, error)
	TopMovers(ctx context.Context, gainers bool, limit int) ([]domain.StockQuote, error)
	BySector(ctx context.Context, sector string, limit int) ([]domain.StockQuote, error)
	BySymbols(ctx context.Context, symbols []string) ([]domain.StockQuote, error)
	Sectors(ctx context.Context) ([]domain.SectorCount, error)
}

type PositionRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Position, error)
	GetByID(ctx context.Context, userID, id string) (domain.Position, error)
	GetBySymbol(ctx context.Context, userID, symbol string) (domain.Position, error)
	Create(ctx context.Context, p domain.Position) (domain.Position, error)
	Update(ctx context.Context, p domain.Position) error
	Delete(ctx context.Context, userID, id string) error
	DistinctSymbols(ctx context.Context) ([]string, error)
}

type GoalRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Goal, error)
	GetByID(ctx context.Context, userID, id string) (domain.Goal, error)
	Create(ctx context.Context, g domain.Goal) (domain.Goal, error)
	Update(ctx context.Context, g domain.Goal) error
	Delete(ctx context.Context, userID, id string) error
}

// MarketProvider exposes the two upstream request shapes. Implementations
// translate provider-specific error payloads into the domain error taxonomy
// instead of leaking wire formats upward.
type MarketProvider interface {
	GlobalQuote(ctx context.Context, symbol string) (domain.QuoteSnapshot, error)
	Overview(ctx context.Context, symbol string) (domain.CompanyOverview, error)
}

// FetchGate paces outbound provider calls process-wide. Acquire blocks until
// one request may be issued and records the grant before returning, so
// concurrent callers are serialized. It fails only on context cancellation.
type FetchGate interface {
	Acquire(ctx context.Context) error
}

// IdempotencyStore handles short-lived request deduplication.
type IdempotencyStore interface {
	// TryReserve returns true if key was absent and is now reserved.
	TryReserve(ctx context.Context, key string) (bool, error)
}

// NoopIdempotency always succeeds; useful for tests/dev when Redis is disabled.
type NoopIdempotency struct{}

func (NoopIdempotency) TryReserve(context.Context, string) (bool, error) { return true, nil }
