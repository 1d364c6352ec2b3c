package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"investtrack/internal/domain"
)

var ErrRepo = errors.New("repo error")

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

type fakeQuoteStore struct {
	store   map[string]domain.StockQuote
	err     error
	upserts int
}

func newFakeQuoteStore(quotes ...domain.StockQuote) *fakeQuoteStore {
	s := &fakeQuoteStore{store: map[string]domain.StockQuote{}}
	for _, q := range quotes {
		s.store[q.Symbol] = q
	}
	return s
}

func (f *fakeQuoteStore) Get(_ context.Context, symbol string) (domain.StockQuote, error) {
	if f.err != nil {
		return domain.StockQuote{}, f.err
	}
	q, ok := f.store[symbol]
	if !ok {
		return domain.StockQuote{}, domain.ErrNotFound
	}
	return q, nil
}

func (f *fakeQuoteStore) Upsert(_ context.Context, patch domain.QuotePatch) (domain.StockQuote, error) {
	if f.err != nil {
		return domain.StockQuote{}, f.err
	}
	f.upserts++
	prev, ok := f.store[patch.Symbol]
	var next domain.StockQuote
	if ok {
		next = patch.Apply(prev)
	} else {
		next = patch.New()
	}
	f.store[patch.Symbol] = next
	return next, nil
}

func (f *fakeQuoteStore) Search(_ context.Context, term string, limit int) ([]domain.StockQuote, error) {
	var out []domain.StockQuote
	for _, q := range f.store {
		if strings.HasPrefix(q.Symbol, strings.ToUpper(term)) && len(out) < limit {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuoteStore) TopMovers(_ context.Context, _ bool, _ int) ([]domain.StockQuote, error) {
	return nil, nil
}

func (f *fakeQuoteStore) BySector(_ context.Context, _ string, _ int) ([]domain.StockQuote, error) {
	return nil, nil
}

func (f *fakeQuoteStore) BySymbols(_ context.Context, symbols []string) ([]domain.StockQuote, error) {
	var out []domain.StockQuote
	for _, s := range symbols {
		if q, ok := f.store[s]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuoteStore) Sectors(_ context.Context) ([]domain.SectorCount, error) { return nil, nil }

type fakeProvider struct {
	snaps      map[string]domain.QuoteSnapshot
	overviews  map[string]domain.CompanyOverview
	quoteErr   error
	ovErr      error
	quoteCalls int
	ovCalls    int
	// failSymbols forces the quote call to fail for specific symbols only.
	failSymbols map[string]error
}

func (f *fakeProvider) GlobalQuote(_ context.Context, symbol string) (domain.QuoteSnapshot, error) {
	f.quoteCalls++
	if err, ok := f.failSymbols[symbol]; ok {
		return domain.QuoteSnapshot{}, err
	}
	if f.quoteErr != nil {
		return domain.QuoteSnapshot{}, f.quoteErr
	}
	if s, ok := f.snaps[symbol]; ok {
		return s, nil
	}
	return domain.QuoteSnapshot{Symbol: symbol, Price: 100}, nil
}

func (f *fakeProvider) Overview(_ context.Context, symbol string) (domain.CompanyOverview, error) {
	f.ovCalls++
	if f.ovErr != nil {
		return domain.CompanyOverview{}, f.ovErr
	}
	if o, ok := f.overviews[symbol]; ok {
		return o, nil
	}
	return domain.CompanyOverview{Symbol: symbol}, nil
}

type fakeGate struct {
	acquired int
	err      error
}

func (f *fakeGate) Acquire(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.acquired++
	return nil
}

type fakePositionRepo struct {
	byID map[string]domain.Position
	next int
	err  error
}

func newFakePositionRepo(positions ...domain.Position) *fakePositionRepo {
	r := &fakePositionRepo{byID: map[string]domain.Position{}}
	for _, p := range positions {
		r.next++
		if p.ID == "" {
			p.ID = fmt.Sprintf("pos-%d", r.next)
		}
		r.byID[p.ID] = p
	}
	return r
}

func (f *fakePositionRepo) ListByUser(_ context.Context, userID string) ([]domain.Position, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Position
	for _, p := range f.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePositionRepo) GetByID(_ context.Context, userID, id string) (domain.Position, error) {
	p, ok := f.byID[id]
	if !ok || p.UserID != userID {
		return domain.Position{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePositionRepo) GetBySymbol(_ context.Context, userID, symbol string) (domain.Position, error) {
	for _, p := range f.byID {
		if p.UserID == userID && p.Symbol == symbol {
			return p, nil
		}
	}
	return domain.Position{}, domain.ErrNotFound
}

func (f *fakePositionRepo) Create(_ context.Context, p domain.Position) (domain.Position, error) {
	if f.err != nil {
		return domain.Position{}, f.err
	}
	f.next++
	p.ID = fmt.Sprintf("pos-%d", f.next)
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakePositionRepo) Update(_ context.Context, p domain.Position) error {
	if _, ok := f.byID[p.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakePositionRepo) Delete(_ context.Context, userID, id string) error {
	p, ok := f.byID[id]
	if !ok || p.UserID != userID {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePositionRepo) DistinctSymbols(_ context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range f.byID {
		if _, ok := seen[p.Symbol]; !ok {
			seen[p.Symbol] = struct{}{}
			out = append(out, p.Symbol)
		}
	}
	return out, nil
}

type fakeGoalRepo struct {
	byID map[string]domain.Goal
	next int
}

func newFakeGoalRepo() *fakeGoalRepo { return &fakeGoalRepo{byID: map[string]domain.Goal{}} }

func (f *fakeGoalRepo) ListByUser(_ context.Context, userID string) ([]domain.Goal, error) {
	var out []domain.Goal
	for _, g := range f.byID {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoalRepo) GetByID(_ context.Context, userID, id string) (domain.Goal, error) {
	g, ok := f.byID[id]
	if !ok || g.UserID != userID {
		return domain.Goal{}, domain.ErrNotFound
	}
	return g, nil
}

func (f *fakeGoalRepo) Create(_ context.Context, g domain.Goal) (domain.Goal, error) {
	f.next++
	g.ID = fmt.Sprintf("goal-%d", f.next)
	f.byID[g.ID] = g
	return g, nil
}

func (f *fakeGoalRepo) Update(_ context.Context, g domain.Goal) error {
	if _, ok := f.byID[g.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[g.ID] = g
	return nil
}

func (f *fakeGoalRepo) Delete(_ context.Context, userID, id string) error {
	g, ok := f.byID[id]
	if !ok || g.UserID != userID {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
