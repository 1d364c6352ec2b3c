package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"investtrack/internal/domain"
)

const quoteCols = `symbol, company_name, sector, industry, price, previous_close,
	change, change_percent, volume, market_cap, pe_ratio, dividend_yield,
	week_high_52, week_low_52, beta, eps, last_updated`

type StockRepo struct{ db *DB }

func NewStockRepo(db *DB) *StockRepo { return &StockRepo{db: db} }

func (r *StockRepo) Get(ctx context.Context, symbol string) (domain.StockQuote, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+quoteCols+` FROM stock_quotes WHERE symbol=$1`, symbol)
	q, err := scanQuote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StockQuote{}, domain.ErrNotFound
	}
	return q, err
}

// Upsert merges the patch into the stored row. COALESCE keeps the previously
// stored value for every nil patch field; price and last_updated always win.
func (r *StockRepo) Upsert(ctx context.Context, p domain.QuotePatch) (domain.StockQuote, error) {
	row := r.db.Pool.QueryRow(ctx, `
        INSERT INTO stock_quotes (`+quoteCols+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        ON CONFLICT (symbol) DO UPDATE SET
            price          = EXCLUDED.price,
            company_name   = COALESCE(EXCLUDED.company_name,   stock_quotes.company_name),
            sector         = COALESCE(EXCLUDED.sector,         stock_quotes.sector),
            industry       = COALESCE(EXCLUDED.industry,       stock_quotes.industry),
            previous_close = COALESCE(EXCLUDED.previous_close, stock_quotes.previous_close),
            change         = COALESCE(EXCLUDED.change,         stock_quotes.change),
            change_percent = COALESCE(EXCLUDED.change_percent, stock_quotes.change_percent),
            volume         = COALESCE(EXCLUDED.volume,         stock_quotes.volume),
            market_cap     = COALESCE(EXCLUDED.market_cap,     stock_quotes.market_cap),
            pe_ratio       = COALESCE(EXCLUDED.pe_ratio,       stock_quotes.pe_ratio),
            dividend_yield = COALESCE(EXCLUDED.dividend_yield, stock_quotes.dividend_yield),
            week_high_52   = COALESCE(EXCLUDED.week_high_52,   stock_quotes.week_high_52),
            week_low_52    = COALESCE(EXCLUDED.week_low_52,    stock_quotes.week_low_52),
            beta           = COALESCE(EXCLUDED.beta,           stock_quotes.beta),
            eps            = COALESCE(EXCLUDED.eps,            stock_quotes.eps),
            last_updated   = EXCLUDED.last_updated
        RETURNING `+quoteCols,
		p.Symbol, p.CompanyName, p.Sector, p.Industry, p.Price, p.PreviousClose,
		p.Change, p.ChangePercent, p.Volume, p.MarketCap, p.PERatio, p.DividendYield,
		p.WeekHigh52, p.WeekLow52, p.Beta, p.EPS, p.LastUpdated)
	return scanQuote(row)
}

func (r *StockRepo) Search(ctx context.Context, term string, limit int) ([]domain.StockQuote, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+quoteCols+` FROM stock_quotes
         WHERE symbol ILIKE $1 OR company_name ILIKE $1
         ORDER BY symbol LIMIT $2`, "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	return collectQuotes(rows)
}

func (r *StockRepo) TopMovers(ctx context.Context, gainers bool, limit int) ([]domain.StockQuote, error) {
	order := "DESC"
	if !gainers {
		order = "ASC"
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+quoteCols+` FROM stock_quotes
         WHERE change_percent IS NOT NULL
         ORDER BY change_percent `+order+` LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectQuotes(rows)
}

func (r *StockRepo) BySector(ctx context.Context, sector string, limit int) ([]domain.StockQuote, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+quoteCols+` FROM stock_quotes
         WHERE sector ILIKE $1 ORDER BY symbol LIMIT $2`, sector, limit)
	if err != nil {
		return nil, err
	}
	return collectQuotes(rows)
}

func (r *StockRepo) BySymbols(ctx context.Context, symbols []string) ([]domain.StockQuote, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+quoteCols+` FROM stock_quotes WHERE symbol = ANY($1) ORDER BY symbol`, symbols)
	if err != nil {
		return nil, err
	}
	return collectQuotes(rows)
}

func (r *StockRepo) Sectors(ctx context.Context) ([]domain.SectorCount, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT sector, COUNT(*) FROM stock_quotes
         WHERE sector IS NOT NULL GROUP BY sector ORDER BY COUNT(*) DESC, sector`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.SectorCount
	for rows.Next() {
		var sc domain.SectorCount
		if err := rows.Scan(&sc.Sector, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func scanQuote(row pgx.Row) (domain.StockQuote, error) {
	var q domain.StockQuote
	err := row.Scan(
		&q.Symbol, &q.CompanyName, &q.Sector, &q.Industry, &q.Price, &q.PreviousClose,
		&q.Change, &q.ChangePercent, &q.Volume, &q.MarketCap, &q.PERatio, &q.DividendYield,
		&q.WeekHigh52, &q.WeekLow52, &q.Beta, &q.EPS, &q.LastUpdated)
	return q, err
}

func collectQuotes(rows pgx.Rows) ([]domain.StockQuote, error) {
	defer rows.Close()
	var out []domain.StockQuote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
