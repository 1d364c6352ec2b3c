package domain

import "time"

// QuoteSnapshot is the live price shape returned by the market data provider.
type QuoteSnapshot struct {
	Symbol        string
	Price         float64
	PreviousClose *float64
	Change        *float64
	ChangePercent *float64
	Volume        *int64
	QuotedAt      time.Time
}

// CompanyOverview is the slower-moving descriptive shape. All fields are
// optional; the provider frequently omits fundamentals for smaller symbols.
type CompanyOverview struct {
	Symbol        string
	CompanyName   *string
	Sector        *string
	Industry      *string
	MarketCap     *int64
	PERatio       *float64
	DividendYield *float64
	WeekHigh52    *float64
	WeekLow52     *float64
	Beta          *float64
	EPS           *float64
}
