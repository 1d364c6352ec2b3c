package application

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"investtrack/internal/domain"

	"go.uber.org/zap"
)

// PositionView is one holding decorated with valuation metrics.
type PositionView struct {
	domain.Position
	TotalValue      float64
	TotalCost       float64
	GainLoss        float64
	GainLossPercent float64
	Allocation      float64
}

type PortfolioSummary struct {
	TotalValue           float64
	TotalCost            float64
	TotalGainLoss        float64
	TotalGainLossPercent float64
	TotalPositions       int
}

type PortfolioView struct {
	Positions []PositionView
	Summary   PortfolioSummary
}

type SectorAllocation struct {
	Sector     string
	Value      float64
	Percentage float64
	Symbols    []string
}

type PerformerView struct {
	Symbol          string
	CompanyName     *string
	GainLossPercent float64
}

type PortfolioStats struct {
	TotalPositions       int
	TotalValue           float64
	TotalCost            float64
	TotalGainLoss        float64
	TotalGainLossPercent float64
	DiversificationScore float64
	UniqueSectors        int
	TopPerformer         *PerformerView
	WorstPerformer       *PerformerView
}

// PortfolioService owns holdings and their valuation against the quote cache.
type PortfolioService struct {
	positions PositionRepo
	store     QuoteStore
	refresher *Refresher
	clock     Clock
	log       *zap.Logger
}

func NewPortfolioService(positions PositionRepo, store QuoteStore, refresher *Refresher, log *zap.Logger) *PortfolioService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PortfolioService{
		positions: positions,
		store:     store,
		refresher: refresher,
		clock:     realClock{},
		log:       log,
	}
}

// List values the user's holdings against refreshed quotes. Provider
// failures degrade to the last cached price (or the cost basis when the
// symbol was never cached); store failures propagate.
func (s *PortfolioService) List(ctx context.Context, userID string) (PortfolioView, error) {
	items, err := s.positions.ListByUser(ctx, userID)
	if err != nil {
		return PortfolioView{}, fmt.Errorf("list positions: %w", err)
	}

	views := make([]PositionView, 0, len(items))
	var totalValue, totalCost float64
	for _, p := range items {
		price, err := s.currentPrice(ctx, p)
		if err != nil {
			return PortfolioView{}, err
		}
		p.CurrentPrice = price
		v := PositionView{
			Position:        p,
			TotalValue:      p.TotalValue(),
			TotalCost:       p.TotalCost(),
			GainLoss:        p.GainLoss(),
			GainLossPercent: p.GainLossPercent(),
		}
		totalValue += v.TotalValue
		totalCost += v.TotalCost
		views = append(views, v)
	}
	for i := range views {
		if totalValue > 0 {
			views[i].Allocation = views[i].TotalValue / totalValue * 100
		}
	}

	summary := PortfolioSummary{
		TotalValue:     totalValue,
		TotalCost:      totalCost,
		TotalGainLoss:  totalValue - totalCost,
		TotalPositions: len(views),
	}
	if totalCost > 0 {
		summary.TotalGainLossPercent = (totalValue - totalCost) / totalCost * 100
	}
	return PortfolioView{Positions: views, Summary: summary}, nil
}

// currentPrice refreshes the symbol and returns its price, or nil when no
// quote record can be had at all (valuation then uses the cost basis).
func (s *PortfolioService) currentPrice(ctx context.Context, p domain.Position) (*float64, error) {
	q, _, err := s.refresher.Refresh(ctx, p.Symbol)
	if err == nil {
		return &q.Price, nil
	}
	if errors.Is(err, domain.ErrProviderUnavailable) || errors.Is(err, domain.ErrSymbolNotFound) || errors.Is(err, domain.ErrInvalidSymbol) {
		s.log.Warn("position_price_unavailable", zap.String("symbol", p.Symbol), zap.Error(err))
		return p.CurrentPrice, nil
	}
	return nil, err
}

// AddPosition creates a holding or folds the lot into an existing one with a
// share-weighted average cost. The quote refresh is opportunistic: its
// failure never blocks the trade from being recorded.
func (s *PortfolioService) AddPosition(ctx context.Context, userID, symbol string, shares, averageCost float64) (domain.Position, bool, error) {
	sym := domain.NormalizeSymbol(symbol)
	if !domain.ValidateSymbol(sym) {
		return domain.Position{}, false, fmt.Errorf("%w: %q is not a valid symbol", ErrBadRequest, symbol)
	}
	if shares <= 0 {
		return domain.Position{}, false, fmt.Errorf("%w: shares must be positive", ErrBadRequest)
	}
	if averageCost <= 0 {
		return domain.Position{}, false, fmt.Errorf("%w: average cost must be positive", ErrBadRequest)
	}

	var quote *domain.StockQuote
	if q, _, err := s.refresher.Refresh(ctx, sym); err == nil {
		quote = &q
	} else if !errors.Is(err, domain.ErrProviderUnavailable) && !errors.Is(err, domain.ErrSymbolNotFound) {
		return domain.Position{}, false, err
	} else {
		s.log.Warn("position_quote_unavailable", zap.String("symbol", sym), zap.Error(err))
	}

	existing, err := s.positions.GetBySymbol(ctx, userID, sym)
	switch {
	case err == nil:
		existing.AverageCost = domain.WeightedAverageCost(existing.Shares, existing.AverageCost, shares, averageCost)
		existing.Shares += shares
		existing.LastUpdated = s.clock.Now()
		applyQuote(&existing, quote)
		if err := s.positions.Update(ctx, existing); err != nil {
			return domain.Position{}, false, fmt.Errorf("update position: %w", err)
		}
		return existing, false, nil
	case errors.Is(err, domain.ErrNotFound):
		p := domain.Position{
			UserID:      userID,
			Symbol:      sym,
			Shares:      shares,
			AverageCost: averageCost,
			LastUpdated: s.clock.Now(),
		}
		applyQuote(&p, quote)
		created, err := s.positions.Create(ctx, p)
		if err != nil {
			return domain.Position{}, false, fmt.Errorf("create position: %w", err)
		}
		return created, true, nil
	default:
		return domain.Position{}, false, fmt.Errorf("get position: %w", err)
	}
}

func applyQuote(p *domain.Position, q *domain.StockQuote) {
	if q == nil {
		return
	}
	price := q.Price
	p.CurrentPrice = &price
	if q.CompanyName != nil {
		p.CompanyName = q.CompanyName
	}
	if q.Sector != nil {
		p.Sector = q.Sector
	}
	if q.Industry != nil {
		p.Industry = q.Industry
	}
}

// UpdatePosition adjusts shares and/or cost basis. Setting shares to zero
// removes the holding.
func (s *PortfolioService) UpdatePosition(ctx context.Context, userID, id string, shares, averageCost *float64) (domain.Position, bool, error) {
	p, err := s.positions.GetByID(ctx, userID, id)
	if err != nil {
		return domain.Position{}, false, err
	}
	if shares != nil {
		if *shares < 0 {
			return domain.Position{}, false, fmt.Errorf("%w: shares must not be negative", ErrBadRequest)
		}
		if *shares == 0 {
			if err := s.positions.Delete(ctx, userID, id); err != nil {
				return domain.Position{}, false, err
			}
			return p, true, nil
		}
		p.Shares = *shares
	}
	if averageCost != nil {
		if *averageCost <= 0 {
			return domain.Position{}, false, fmt.Errorf("%w: average cost must be positive", ErrBadRequest)
		}
		p.AverageCost = *averageCost
	}
	p.LastUpdated = s.clock.Now()
	if err := s.positions.Update(ctx, p); err != nil {
		return domain.Position{}, false, fmt.Errorf("update position: %w", err)
	}
	return p, false, nil
}

func (s *PortfolioService) DeletePosition(ctx context.Context, userID, id string) error {
	return s.positions.Delete(ctx, userID, id)
}

// Allocation groups current holdings by sector. It reads cached quotes only,
// never triggering provider calls.
func (s *PortfolioService) Allocation(ctx context.Context, userID string) ([]SectorAllocation, float64, error) {
	items, err := s.positions.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("list positions: %w", err)
	}

	// overlay the latest cached quotes; the denormalized position copy
	// serves any symbol the cache has nothing for
	if len(items) > 0 {
		symbols := make([]string, 0, len(items))
		for _, p := range items {
			symbols = append(symbols, p.Symbol)
		}
		quotes, err := s.store.BySymbols(ctx, symbols)
		if err != nil {
			return nil, 0, fmt.Errorf("load quotes: %w", err)
		}
		cached := make(map[string]domain.StockQuote, len(quotes))
		for _, q := range quotes {
			cached[q.Symbol] = q
		}
		for i := range items {
			if q, ok := cached[items[i].Symbol]; ok {
				price := q.Price
				items[i].CurrentPrice = &price
				if q.Sector != nil {
					items[i].Sector = q.Sector
				}
			}
		}
	}

	bySector := map[string]*SectorAllocation{}
	var totalValue float64
	for _, p := range items {
		sector := "Unknown"
		if p.Sector != nil && *p.Sector != "" {
			sector = *p.Sector
		}
		value := p.TotalValue()
		totalValue += value
		a, ok := bySector[sector]
		if !ok {
			a = &SectorAllocation{Sector: sector}
			bySector[sector] = a
		}
		a.Value += value
		a.Symbols = append(a.Symbols, p.Symbol)
	}

	out := make([]SectorAllocation, 0, len(bySector))
	for _, a := range bySector {
		if totalValue > 0 {
			a.Percentage = a.Value / totalValue * 100
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, totalValue, nil
}

// Stats summarizes the portfolio from cached data.
func (s *PortfolioService) Stats(ctx context.Context, userID string) (PortfolioStats, error) {
	items, err := s.positions.ListByUser(ctx, userID)
	if err != nil {
		return PortfolioStats{}, fmt.Errorf("list positions: %w", err)
	}
	stats := PortfolioStats{TotalPositions: len(items)}
	if len(items) == 0 {
		return stats, nil
	}

	sectors := map[string]struct{}{}
	for _, p := range items {
		value := p.TotalValue()
		cost := p.TotalCost()
		stats.TotalValue += value
		stats.TotalCost += cost

		pct := p.GainLossPercent()
		if stats.TopPerformer == nil || pct > stats.TopPerformer.GainLossPercent {
			stats.TopPerformer = &PerformerView{Symbol: p.Symbol, CompanyName: p.CompanyName, GainLossPercent: pct}
		}
		if stats.WorstPerformer == nil || pct < stats.WorstPerformer.GainLossPercent {
			stats.WorstPerformer = &PerformerView{Symbol: p.Symbol, CompanyName: p.CompanyName, GainLossPercent: pct}
		}

		sector := "Unknown"
		if p.Sector != nil && *p.Sector != "" {
			sector = *p.Sector
		}
		sectors[sector] = struct{}{}
	}
	stats.TotalGainLoss = stats.TotalValue - stats.TotalCost
	if stats.TotalCost > 0 {
		stats.TotalGainLossPercent = stats.TotalGainLoss / stats.TotalCost * 100
	}
	stats.UniqueSectors = len(sectors)
	score := float64(len(sectors)) / float64(len(items)) * 100
	if score > 100 {
		score = 100
	}
	stats.DiversificationScore = score
	return stats, nil
}
