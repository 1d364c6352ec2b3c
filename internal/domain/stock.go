package domain

import "time"

// StockQuote is the cached market snapshot for one symbol. Price is always set
// on a stored record; every other market field is optional and stays nil when
// the provider never reported it.
type StockQuote struct {
	Symbol        string
	CompanyName   *string
	Sector        *string
	Industry      *string
	Price         float64
	PreviousClose *float64
	Change        *float64
	ChangePercent *float64
	Volume        *int64
	MarketCap     *int64
	PERatio       *float64
	DividendYield *float64
	WeekHigh52    *float64
	WeekLow52     *float64
	Beta          *float64
	EPS           *float64
	LastUpdated   time.Time
}

// IsStale reports whether the record is older than the freshness window.
func (q StockQuote) IsStale(window time.Duration, now time.Time) bool {
	return now.Sub(q.LastUpdated) > window
}

// QuotePatch is a partial update merged into the stored record. Nil fields
// mean "leave whatever is already stored"; only Price and LastUpdated are
// written unconditionally.
type QuotePatch struct {
	Symbol        string
	Price         float64
	PreviousClose *float64
	Change        *float64
	ChangePercent *float64
	Volume        *int64
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
	LastUpdated   time.Time
}

// Apply merges the patch into an existing record, keeping stored values for
// every nil patch field.
func (p QuotePatch) Apply(prev StockQuote) StockQuote {
	out := prev
	out.Symbol = p.Symbol
	out.Price = p.Price
	out.LastUpdated = p.LastUpdated
	if p.PreviousClose != nil {
		out.PreviousClose = p.PreviousClose
	}
	if p.Change != nil {
		out.Change = p.Change
	}
	if p.ChangePercent != nil {
		out.ChangePercent = p.ChangePercent
	}
	if p.Volume != nil {
		out.Volume = p.Volume
	}
	if p.CompanyName != nil {
		out.CompanyName = p.CompanyName
	}
	if p.Sector != nil {
		out.Sector = p.Sector
	}
	if p.Industry != nil {
		out.Industry = p.Industry
	}
	if p.MarketCap != nil {
		out.MarketCap = p.MarketCap
	}
	if p.PERatio != nil {
		out.PERatio = p.PERatio
	}
	if p.DividendYield != nil {
		out.DividendYield = p.DividendYield
	}
	if p.WeekHigh52 != nil {
		out.WeekHigh52 = p.WeekHigh52
	}
	if p.WeekLow52 != nil {
		out.WeekLow52 = p.WeekLow52
	}
	if p.Beta != nil {
		out.Beta = p.Beta
	}
	if p.EPS != nil {
		out.EPS = p.EPS
	}
	return out
}

// New builds a fresh record from the patch alone.
func (p QuotePatch) New() StockQuote {
	return p.Apply(StockQuote{})
}

// SectorCount is one row of the sector breakdown.
type SectorCount struct {
	Sector string
	Count  int
}
