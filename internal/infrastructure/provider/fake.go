package provider

import (
	"context"
	"time"

	"investtrack/internal/application"
	"investtrack/internal/domain"
)

// Ensure Fake implements application.MarketProvider.
var _ application.MarketProvider = (*Fake)(nil)

// Fake serves a fixed price for any symbol; used in dev profiles and tests.
type Fake struct {
	price float64
}

func NewFake(price float64) *Fake { return &Fake{price: price} }

func (f *Fake) GlobalQuote(_ context.Context, symbol string) (domain.QuoteSnapshot, error) {
	return domain.QuoteSnapshot{
		Symbol:   domain.NormalizeSymbol(symbol),
		Price:    f.price,
		QuotedAt: time.Now().UTC(),
	}, nil
}

func (f *Fake) Overview(_ context.Context, symbol string) (domain.CompanyOverview, error) {
	return domain.CompanyOverview{Symbol: domain.NormalizeSymbol(symbol)}, nil
}
