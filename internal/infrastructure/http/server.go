package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"investtrack/internal/application"
	"investtrack/internal/domain"
)

type Server struct {
	stocks    *application.StockService
	portfolio *application.PortfolioService
	goals     *application.GoalService
	idem      application.IdempotencyStore
	ping      func(context.Context) error
}

func NewServer(
	stocks *application.StockService,
	portfolio *application.PortfolioService,
	goals *application.GoalService,
	idem application.IdempotencyStore,
	ping func(context.Context) error,
) *Server {
	if idem == nil {
		idem = application.NoopIdempotency{}
	}
	return &Server{stocks: stocks, portfolio: portfolio, goals: goals, idem: idem, ping: ping}
}

// --- DTOs ---

type quoteDTO struct {
	Symbol        string    `json:"symbol"`
	CompanyName   *string   `json:"companyName,omitempty"`
	Sector        *string   `json:"sector,omitempty"`
	Industry      *string   `json:"industry,omitempty"`
	Price         float64   `json:"price"`
	PreviousClose *float64  `json:"previousClose,omitempty"`
	Change        *float64  `json:"change,omitempty"`
	ChangePercent *float64  `json:"changePercent,omitempty"`
	Volume        *int64    `json:"volume,omitempty"`
	MarketCap     *int64    `json:"marketCap,omitempty"`
	PERatio       *float64  `json:"peRatio,omitempty"`
	DividendYield *float64  `json:"dividendYield,omitempty"`
	WeekHigh52    *float64  `json:"week52High,omitempty"`
	WeekLow52     *float64  `json:"week52Low,omitempty"`
	Beta          *float64  `json:"beta,omitempty"`
	EPS           *float64  `json:"eps,omitempty"`
	LastUpdated   time.Time `json:"lastUpdated"`
	Fresh         *bool     `json:"fresh,omitempty"`
}

func toQuoteDTO(q domain.StockQuote) quoteDTO {
	return quoteDTO{
		Symbol:        q.Symbol,
		CompanyName:   q.CompanyName,
		Sector:        q.Sector,
		Industry:      q.Industry,
		Price:         q.Price,
		PreviousClose: q.PreviousClose,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
		MarketCap:     q.MarketCap,
		PERatio:       q.PERatio,
		DividendYield: q.DividendYield,
		WeekHigh52:    q.WeekHigh52,
		WeekLow52:     q.WeekLow52,
		Beta:          q.Beta,
		EPS:           q.EPS,
		LastUpdated:   q.LastUpdated,
	}
}

func toQuoteDTOs(qs []domain.StockQuote) []quoteDTO {
	out := make([]quoteDTO, 0, len(qs))
	for _, q := range qs {
		out = append(out, toQuoteDTO(q))
	}
	return out
}

type batchFailureDTO struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

type batchResultDTO struct {
	Quotes []quoteDTO        `json:"quotes"`
	Failed []batchFailureDTO `json:"failed"`
}

func toBatchResultDTO(res application.BatchResult) batchResultDTO {
	out := batchResultDTO{
		Quotes: toQuoteDTOs(res.Succeeded),
		Failed: make([]batchFailureDTO, 0, len(res.Failed)),
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, batchFailureDTO{Symbol: f.Symbol, Error: f.Err.Error()})
	}
	return out
}

type positionDTO struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	CompanyName     *string   `json:"companyName,omitempty"`
	Shares          float64   `json:"shares"`
	AverageCost     float64   `json:"averageCost"`
	CurrentPrice    *float64  `json:"currentPrice,omitempty"`
	Sector          *string   `json:"sector,omitempty"`
	Industry        *string   `json:"industry,omitempty"`
	TotalValue      float64   `json:"totalValue"`
	TotalCost       float64   `json:"totalCost"`
	GainLoss        float64   `json:"gainLoss"`
	GainLossPercent float64   `json:"gainLossPercent"`
	Allocation      float64   `json:"allocation"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

func toPositionDTO(v application.PositionView) positionDTO {
	return positionDTO{
		ID:              v.ID,
		Symbol:          v.Symbol,
		CompanyName:     v.CompanyName,
		Shares:          v.Shares,
		AverageCost:     v.AverageCost,
		CurrentPrice:    v.CurrentPrice,
		Sector:          v.Sector,
		Industry:        v.Industry,
		TotalValue:      v.TotalValue,
		TotalCost:       v.TotalCost,
		GainLoss:        v.GainLoss,
		GainLossPercent: v.GainLossPercent,
		Allocation:      v.Allocation,
		LastUpdated:     v.LastUpdated,
	}
}

type goalDTO struct {
	ID                          string     `json:"id"`
	Name                        string     `json:"name"`
	Description                 *string    `json:"description,omitempty"`
	TargetAmount                float64    `json:"targetAmount"`
	CurrentAmount               float64    `json:"currentAmount"`
	TargetDate                  time.Time  `json:"targetDate"`
	RiskTolerance               string     `json:"riskTolerance"`
	MonthlyContribution         *float64   `json:"monthlyContribution,omitempty"`
	Category                    string     `json:"category"`
	Priority                    string     `json:"priority"`
	IsActive                    bool       `json:"isActive"`
	IsAchieved                  bool       `json:"isAchieved"`
	AchievedDate                *time.Time `json:"achievedDate,omitempty"`
	Progress                    float64    `json:"progress"`
	MonthsRemaining             int        `json:"monthsRemaining"`
	RequiredMonthlyContribution float64    `json:"requiredMonthlyContribution"`
	UpdatedAt                   time.Time  `json:"updatedAt"`
}

func toGoalDTO(v application.GoalView) goalDTO {
	return goalDTO{
		ID:                          v.ID,
		Name:                        v.Name,
		Description:                 v.Description,
		TargetAmount:                v.TargetAmount,
		CurrentAmount:               v.CurrentAmount,
		TargetDate:                  v.TargetDate,
		RiskTolerance:               string(v.RiskTolerance),
		MonthlyContribution:         v.MonthlyContribution,
		Category:                    string(v.Category),
		Priority:                    string(v.Priority),
		IsActive:                    v.IsActive,
		IsAchieved:                  v.IsAchieved,
		AchievedDate:                v.AchievedDate,
		Progress:                    v.Progress,
		MonthsRemaining:             v.MonthsRemaining,
		RequiredMonthlyContribution: v.RequiredMonthlyContribution,
		UpdatedAt:                   v.UpdatedAt,
	}
}

// --- stock handlers ---

func (s *Server) getQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	q, fresh, err := s.stocks.Quote(r.Context(), symbol)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dto := toQuoteDTO(q)
	dto.Fresh = &fresh
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) postQuotes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := s.stocks.Quotes(r.Context(), body.Symbols)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResultDTO(res))
}

func (s *Server) searchStocks(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.stocks.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": toQuoteDTOs(quotes)})
}

func (s *Server) getMovers(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = "gainers"
	}
	if kind != "gainers" && kind != "losers" {
		writeError(w, http.StatusBadRequest, "type must be gainers or losers")
		return
	}
	quotes, err := s.stocks.Movers(r.Context(), kind == "gainers", queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"type": kind, "results": toQuoteDTOs(quotes)})
}

func (s *Server) getSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := s.stocks.Sectors(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type sectorDTO struct {
		Sector string `json:"sector"`
		Count  int    `json:"count"`
	}
	out := make([]sectorDTO, 0, len(sectors))
	for _, sc := range sectors {
		out = append(out, sectorDTO{Sector: sc.Sector, Count: sc.Count})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sectors": out})
}

func (s *Server) getSector(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.stocks.BySector(r.Context(), chi.URLParam(r, "name"), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": toQuoteDTOs(quotes)})
}

func (s *Server) getPopular(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.stocks.Popular(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": toQuoteDTOs(quotes)})
}

// --- portfolio handlers ---

func (s *Server) getPortfolio(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	view, err := s.portfolio.List(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	positions := make([]positionDTO, 0, len(view.Positions))
	for _, p := range view.Positions {
		positions = append(positions, toPositionDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"positions": positions,
		"summary": map[string]any{
			"totalValue":           view.Summary.TotalValue,
			"totalCost":            view.Summary.TotalCost,
			"totalGainLoss":        view.Summary.TotalGainLoss,
			"totalGainLossPercent": view.Summary.TotalGainLossPercent,
			"totalPositions":       view.Summary.TotalPositions,
		},
	})
}

func (s *Server) postPosition(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var body struct {
		Symbol      string  `json:"symbol"`
		Shares      float64 `json:"shares"`
		AverageCost float64 `json:"averageCost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, created, err := s.portfolio.AddPosition(r.Context(), uid, body.Symbol, body.Shares, body.AverageCost)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toPositionDTO(application.PositionView{
		Position:        p,
		TotalValue:      p.TotalValue(),
		TotalCost:       p.TotalCost(),
		GainLoss:        p.GainLoss(),
		GainLossPercent: p.GainLossPercent(),
	}))
}

func (s *Server) putPosition(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var body struct {
		Shares      *float64 `json:"shares"`
		AverageCost *float64 `json:"averageCost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, deleted, err := s.portfolio.UpdatePosition(r.Context(), uid, chi.URLParam(r, "id"), body.Shares, body.AverageCost)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if deleted {
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": p.ID})
		return
	}
	writeJSON(w, http.StatusOK, toPositionDTO(application.PositionView{
		Position:        p,
		TotalValue:      p.TotalValue(),
		TotalCost:       p.TotalCost(),
		GainLoss:        p.GainLoss(),
		GainLossPercent: p.GainLossPercent(),
	}))
}

func (s *Server) deletePosition(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := s.portfolio.DeletePosition(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getAllocation(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	allocs, totalValue, err := s.portfolio.Allocation(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type allocDTO struct {
		Sector     string   `json:"sector"`
		Value      float64  `json:"value"`
		Percentage float64  `json:"percentage"`
		Symbols    []string `json:"symbols"`
	}
	out := make([]allocDTO, 0, len(allocs))
	for _, a := range allocs {
		out = append(out, allocDTO{Sector: a.Sector, Value: a.Value, Percentage: a.Percentage, Symbols: a.Symbols})
	}
	writeJSON(w, http.StatusOK, map[string]any{"allocation": out, "totalValue": totalValue})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	stats, err := s.portfolio.Stats(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type performerDTO struct {
		Symbol          string  `json:"symbol"`
		CompanyName     *string `json:"companyName,omitempty"`
		GainLossPercent float64 `json:"gainLossPercent"`
	}
	resp := map[string]any{
		"totalPositions":       stats.TotalPositions,
		"totalValue":           stats.TotalValue,
		"totalCost":            stats.TotalCost,
		"totalGainLoss":        stats.TotalGainLoss,
		"totalGainLossPercent": stats.TotalGainLossPercent,
		"diversificationScore": stats.DiversificationScore,
		"uniqueSectors":        stats.UniqueSectors,
	}
	if stats.TopPerformer != nil {
		resp["topPerformer"] = performerDTO(*stats.TopPerformer)
	}
	if stats.WorstPerformer != nil {
		resp["worstPerformer"] = performerDTO(*stats.WorstPerformer)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- goal handlers ---

type goalBody struct {
	Name                *string  `json:"name"`
	Description         *string  `json:"description"`
	TargetAmount        *float64 `json:"targetAmount"`
	CurrentAmount       *float64 `json:"currentAmount"`
	TargetDate          *string  `json:"targetDate"`
	RiskTolerance       *string  `json:"riskTolerance"`
	MonthlyContribution *float64 `json:"monthlyContribution"`
	Category            *string  `json:"category"`
	Priority            *string  `json:"priority"`
	IsActive            *bool    `json:"isActive"`
}

func (b goalBody) toInput() (application.GoalInput, error) {
	in := application.GoalInput{
		Name:                b.Name,
		Description:         b.Description,
		TargetAmount:        b.TargetAmount,
		CurrentAmount:       b.CurrentAmount,
		MonthlyContribution: b.MonthlyContribution,
		IsActive:            b.IsActive,
	}
	if b.TargetDate != nil {
		t, err := time.Parse(time.RFC3339, *b.TargetDate)
		if err != nil {
			// plain dates are accepted too
			t, err = time.Parse("2006-01-02", *b.TargetDate)
			if err != nil {
				return in, errors.New("targetDate must be RFC3339 or YYYY-MM-DD")
			}
		}
		in.TargetDate = &t
	}
	if b.RiskTolerance != nil {
		v := domain.RiskTolerance(*b.RiskTolerance)
		in.RiskTolerance = &v
	}
	if b.Category != nil {
		v := domain.GoalCategory(*b.Category)
		in.Category = &v
	}
	if b.Priority != nil {
		v := domain.GoalPriority(*b.Priority)
		in.Priority = &v
	}
	return in, nil
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	goals, err := s.goals.List(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]goalDTO, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalDTO(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

func (s *Server) getGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	g, err := s.goals.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(g))
}

func (s *Server) postGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var body goalBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	in, err := body.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.goals.Create(r.Context(), uid, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalDTO(g))
}

func (s *Server) putGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var body goalBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	in, err := body.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.goals.Update(r.Context(), uid, chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(g))
}

func (s *Server) deleteGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := s.goals.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- admin ---

func (s *Server) adminRefresh(w http.ResponseWriter, r *http.Request) {
	if key := r.Header.Get("X-Idempotency-Key"); key != "" {
		ok, err := s.idem.TryReserve(r.Context(), key)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}
		if !ok {
			writeError(w, http.StatusConflict, "duplicate request")
			return
		}
	}

	var body struct {
		Symbols []string `json:"symbols"`
	}
	if r.Body != nil {
		// an empty or absent body falls back to the popular universe
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	symbols := body.Symbols
	if len(symbols) == 0 {
		symbols = application.PopularSymbols
	}
	if len(symbols) > s.stocks.MaxBatch() {
		writeError(w, http.StatusBadRequest, "too many symbols")
		return
	}

	res, err := s.stocks.Quotes(r.Context(), symbols)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"refreshed": len(res.Succeeded),
		"failed":    len(res.Failed),
		"result":    toBatchResultDTO(res),
	})
}

// --- helpers ---

// userID pulls the caller identity from the X-User-ID header. Authentication
// proper happens upstream; this service only scopes data per user.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid := r.Header.Get("X-User-ID")
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header required")
		return "", false
	}
	return uid, true
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrBadRequest) || errors.Is(err, domain.ErrInvalidSymbol):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSymbolNotFound) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
