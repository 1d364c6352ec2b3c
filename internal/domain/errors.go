package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrProviderUnavailable covers failed or timed-out provider calls.
	ErrProviderUnavailable = errors.New("quote provider unavailable")

	// ErrProviderRateLimited wraps ErrProviderUnavailable so callers that only
	// care about the fallback policy can match on the broader sentinel.
	ErrProviderRateLimited = fmt.Errorf("quote provider rate limited: %w", ErrProviderUnavailable)
)
