package httpserver

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"investtrack/internal/application"
	"investtrack/internal/domain"
	"investtrack/internal/infrastructure/provider"
)

var _ application.QuoteStore = (*memQuoteStore)(nil)
var _ application.PositionRepo = (*memPositionRepo)(nil)
var _ application.GoalRepo = (*memGoalRepo)(nil)
var _ application.FetchGate = openGate{}

type memQuoteStore struct {
	mu     sync.Mutex
	quotes map[string]domain.StockQuote
}

func (m *memQuoteStore) Get(_ context.Context, symbol string) (domain.StockQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[symbol]
	if !ok {
		return domain.StockQuote{}, domain.ErrNotFound
	}
	return q, nil
}

func (m *memQuoteStore) Upsert(_ context.Context, p domain.QuotePatch) (domain.StockQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quotes == nil {
		m.quotes = map[string]domain.StockQuote{}
	}
	prev, ok := m.quotes[p.Symbol]
	var next domain.StockQuote
	if ok {
		next = p.Apply(prev)
	} else {
		next = p.New()
	}
	m.quotes[p.Symbol] = next
	return next, nil
}

func (m *memQuoteStore) Search(_ context.Context, term string, limit int) ([]domain.StockQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(term)
	var out []domain.StockQuote
	for _, q := range m.quotes {
		name := ""
		if q.CompanyName != nil {
			name = *q.CompanyName
		}
		if strings.Contains(strings.ToLower(q.Symbol), needle) || strings.Contains(strings.ToLower(name), needle) {
			out = append(out, q)
		}
	}
	sortBySymbol(out)
	return capQuotes(out, limit), nil
}

func (m *memQuoteStore) TopMovers(_ context.Context, gainers bool, limit int) ([]domain.StockQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StockQuote
	for _, q := range m.quotes {
		if q.ChangePercent != nil {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if gainers {
			return *out[i].ChangePercent > *out[j].ChangePercent
		}
		return *out[i].ChangePercent < *out[j].ChangePercent
	})
	return capQuotes(out, limit), nil
}

func (m *memQuoteStore) BySector(_ context.Context, sector string, limit int) ([]domain.StockQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StockQuote
	for _, q := range m.quotes {
		if q.Sector != nil && strings.EqualFold(*q.Sector, sector) {
			out = append(out, q)
		}
	}
	sortBySymbol(out)
	return capQuotes(out, limit), nil
}

func (m *memQuoteStore) BySymbols(_ context.Context, symbols []string) ([]domain.StockQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StockQuote
	for _, s := range symbols {
		if q, ok := m.quotes[s]; ok {
			out = append(out, q)
		}
	}
	sortBySymbol(out)
	return out, nil
}

func (m *memQuoteStore) Sectors(_ context.Context) ([]domain.SectorCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, q := range m.quotes {
		if q.Sector != nil {
			counts[*q.Sector]++
		}
	}
	out := make([]domain.SectorCount, 0, len(counts))
	for s, c := range counts {
		out = append(out, domain.SectorCount{Sector: s, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Sector < out[j].Sector
	})
	return out, nil
}

func sortBySymbol(qs []domain.StockQuote) {
	sort.Slice(qs, func(i, j int) bool { return qs[i].Symbol < qs[j].Symbol })
}

func capQuotes(qs []domain.StockQuote, limit int) []domain.StockQuote {
	if limit > 0 && len(qs) > limit {
		return qs[:limit]
	}
	return qs
}

type memPositionRepo struct {
	mu        sync.Mutex
	positions map[string]domain.Position
}

func (m *memPositionRepo) ListByUser(_ context.Context, userID string) ([]domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Position
	for _, p := range m.positions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *memPositionRepo) GetByID(_ context.Context, userID, id string) (domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok || p.UserID != userID {
		return domain.Position{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memPositionRepo) GetBySymbol(_ context.Context, userID, symbol string) (domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.positions {
		if p.UserID == userID && p.Symbol == symbol {
			return p, nil
		}
	}
	return domain.Position{}, domain.ErrNotFound
}

func (m *memPositionRepo) Create(_ context.Context, p domain.Position) (domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.positions == nil {
		m.positions = map[string]domain.Position{}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.positions[p.ID] = p
	return p, nil
}

func (m *memPositionRepo) Update(_ context.Context, p domain.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.positions[p.ID]; !ok {
		return domain.ErrNotFound
	}
	m.positions[p.ID] = p
	return nil
}

func (m *memPositionRepo) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok || p.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.positions, id)
	return nil
}

func (m *memPositionRepo) DistinctSymbols(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]struct{}{}
	for _, p := range m.positions {
		seen[p.Symbol] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

type memGoalRepo struct {
	mu    sync.Mutex
	goals map[string]domain.Goal
}

func (m *memGoalRepo) ListByUser(_ context.Context, userID string) ([]domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetDate.Before(out[j].TargetDate) })
	return out, nil
}

func (m *memGoalRepo) GetByID(_ context.Context, userID, id string) (domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return domain.Goal{}, domain.ErrNotFound
	}
	return g, nil
}

func (m *memGoalRepo) Create(_ context.Context, g domain.Goal) (domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.goals == nil {
		m.goals = map[string]domain.Goal{}
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	m.goals[g.ID] = g
	return g, nil
}

func (m *memGoalRepo) Update(_ context.Context, g domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goals[g.ID]; !ok {
		return domain.ErrNotFound
	}
	m.goals[g.ID] = g
	return nil
}

func (m *memGoalRepo) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.goals, id)
	return nil
}

type openGate struct{}

func (openGate) Acquire(context.Context) error { return nil }

// NewInMemoryServer wires a Server against in-memory repositories and the
// fixed-price fake provider; handy for handler tests and local smoke runs.
func NewInMemoryServer(price float64) (*Server, *memQuoteStore, *memPositionRepo, *memGoalRepo) {
	store := &memQuoteStore{quotes: map[string]domain.StockQuote{}}
	positions := &memPositionRepo{positions: map[string]domain.Position{}}
	goals := &memGoalRepo{goals: map[string]domain.Goal{}}

	refresher := application.NewRefresher(store, provider.NewFake(price), openGate{})
	stocks := application.NewStockService(store, refresher, application.DefaultMaxBatchSymbols)
	portfolio := application.NewPortfolioService(positions, store, refresher, nil)
	goalSvc := application.NewGoalService(goals)

	srv := NewServer(stocks, portfolio, goalSvc, application.NoopIdempotency{},
		func(context.Context) error { return nil })
	return srv, store, positions, goals
}

// seed stores a record directly, bypassing the refresher.
func (m *memQuoteStore) seed(q domain.StockQuote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.LastUpdated.IsZero() {
		q.LastUpdated = time.Now().UTC()
	}
	m.quotes[q.Symbol] = q
}
