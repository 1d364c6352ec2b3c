package provider

import (
	"context"
	"fmt"

	"investtrack/internal/application"
	"investtrack/internal/domain"
)

var _ application.MarketProvider = Disabled{}

// Disabled stands in when no API key is configured. Every call fails with
// the provider-unavailable sentinel, which degrades the refresher to
// cache-only operation through the ordinary stale-fallback path.
type Disabled struct{}

func (Disabled) GlobalQuote(context.Context, string) (domain.QuoteSnapshot, error) {
	return domain.QuoteSnapshot{}, fmt.Errorf("market provider disabled: %w", domain.ErrProviderUnavailable)
}

func (Disabled) Overview(context.Context, string) (domain.CompanyOverview, error) {
	return domain.CompanyOverview{}, fmt.Errorf("market provider disabled: %w", domain.ErrProviderUnavailable)
}
