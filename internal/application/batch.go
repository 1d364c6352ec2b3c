package application

import (
	"context"

	"investtrack/internal/domain"

	"go.uber.org/zap"
)

type BatchFailure struct {
	Symbol string
	Err    error
}

type BatchResult struct {
	Succeeded []domain.StockQuote
	Failed    []BatchFailure
}

// BatchRefresh refreshes each symbol sequentially so the single gate keeps
// its pacing, isolating failures per symbol: the batch always runs to the
// end. Duplicate symbols are collapsed before processing. Callers enforce
// any batch size limit.
func (r *Refresher) BatchRefresh(ctx context.Context, symbols []string) BatchResult {
	var res BatchResult
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		sym := domain.NormalizeSymbol(s)
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}

		q, _, err := r.Refresh(ctx, sym)
		if err != nil {
			r.log.Warn("batch_symbol_failed", zap.String("symbol", sym), zap.Error(err))
			res.Failed = append(res.Failed, BatchFailure{Symbol: sym, Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, q)
	}
	return res
}
