package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"investtrack/internal/application"
	"investtrack/internal/domain"
	"investtrack/internal/infrastructure/httpx"
)

const (
	funcGlobalQuote = "GLOBAL_QUOTE"
	funcOverview    = "OVERVIEW"
)

// AlphaVantageProvider talks to the Alpha Vantage query API. The free tier
// allows roughly one request every 12 seconds; pacing is the fetch gate's
// job, not the client's.
type AlphaVantageProvider struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
}

var _ application.MarketProvider = (*AlphaVantageProvider)(nil)

// avEnvelope carries the provider's out-of-band error fields, present on any
// response regardless of the requested function.
type avEnvelope struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (e avEnvelope) err() error {
	// "Note" and "Information" both signal free-tier throttling
	if e.Note != "" || e.Information != "" {
		return fmt.Errorf("alphavantage: %w", domain.ErrProviderRateLimited)
	}
	if e.ErrorMessage != "" {
		return fmt.Errorf("alphavantage: %s: %w", e.ErrorMessage, domain.ErrProviderUnavailable)
	}
	return nil
}

type avGlobalQuoteResp struct {
	avEnvelope
	GlobalQuote avGlobalQuote `json:"Global Quote"`
}

type avGlobalQuote struct {
	Symbol        string `json:"01. symbol"`
	Price         string `json:"05. price"`
	Volume        string `json:"06. volume"`
	LatestDay     string `json:"07. latest trading day"`
	PreviousClose string `json:"08. previous close"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

type avOverviewResp struct {
	avEnvelope
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
	DividendYield        string `json:"DividendYield"`
	WeekHigh52           string `json:"52WeekHigh"`
	WeekLow52            string `json:"52WeekLow"`
	Beta                 string `json:"Beta"`
	EPS                  string `json:"EPS"`
}

func (p *AlphaVantageProvider) GlobalQuote(ctx context.Context, symbol string) (domain.QuoteSnapshot, error) {
	var body avGlobalQuoteResp
	if err := p.query(ctx, funcGlobalQuote, symbol, &body); err != nil {
		return domain.QuoteSnapshot{}, err
	}
	if err := body.avEnvelope.err(); err != nil {
		return domain.QuoteSnapshot{}, err
	}

	price := parseFloat(body.GlobalQuote.Price)
	if price == nil {
		// empty Global Quote object means the symbol is unknown upstream
		return domain.QuoteSnapshot{}, fmt.Errorf("alphavantage: no quote for %s: %w", symbol, domain.ErrSymbolNotFound)
	}

	quotedAt := time.Now().UTC()
	if t, err := time.Parse("2006-01-02", body.GlobalQuote.LatestDay); err == nil {
		quotedAt = t
	}
	return domain.QuoteSnapshot{
		Symbol:        domain.NormalizeSymbol(symbol),
		Price:         *price,
		PreviousClose: parseFloat(body.GlobalQuote.PreviousClose),
		Change:        parseFloat(body.GlobalQuote.Change),
		ChangePercent: parseFloat(body.GlobalQuote.ChangePercent),
		Volume:        parseInt(body.GlobalQuote.Volume),
		QuotedAt:      quotedAt,
	}, nil
}

func (p *AlphaVantageProvider) Overview(ctx context.Context, symbol string) (domain.CompanyOverview, error) {
	var body avOverviewResp
	if err := p.query(ctx, funcOverview, symbol, &body); err != nil {
		return domain.CompanyOverview{}, err
	}
	if err := body.avEnvelope.err(); err != nil {
		return domain.CompanyOverview{}, err
	}
	if body.Symbol == "" {
		return domain.CompanyOverview{}, fmt.Errorf("alphavantage: no overview for %s: %w", symbol, domain.ErrSymbolNotFound)
	}

	return domain.CompanyOverview{
		Symbol:        body.Symbol,
		CompanyName:   parseString(body.Name),
		Sector:        parseString(body.Sector),
		Industry:      parseString(body.Industry),
		MarketCap:     parseInt(body.MarketCapitalization),
		PERatio:       parseFloat(body.PERatio),
		DividendYield: parseFloat(body.DividendYield),
		WeekHigh52:    parseFloat(body.WeekHigh52),
		WeekLow52:     parseFloat(body.WeekLow52),
		Beta:          parseFloat(body.Beta),
		EPS:           parseFloat(body.EPS),
	}, nil
}

func (p *AlphaVantageProvider) query(ctx context.Context, function, symbol string, out any) error {
	if p.BaseURL == "" || p.APIKey == "" {
		return fmt.Errorf("alphavantage: missing configuration: %w", domain.ErrProviderUnavailable)
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("alphavantage: invalid base url: %w", err)
	}
	u.Path = "/query"
	q := u.Query()
	q.Set("function", function)
	q.Set("symbol", domain.NormalizeSymbol(symbol))
	q.Set("apikey", p.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("alphavantage: create request: %w", err)
	}

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	if err := client.DoJSON(ctx, req, out); err != nil {
		return fmt.Errorf("alphavantage: %s %s: %v: %w", function, symbol, err, domain.ErrProviderUnavailable)
	}
	return nil
}

// parseFloat decodes a provider numeric string, stripping a trailing percent
// sign. Absent or placeholder values decode to nil so "unknown" never turns
// into zero.
func parseFloat(s string) *float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" || s == "None" || s == "-" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &i
}

func parseString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return nil
	}
	return &s
}
