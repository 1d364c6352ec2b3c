package domain

import "time"

// Position is one portfolio holding. At most one position exists per
// (UserID, Symbol); adding shares for the same symbol folds into the
// existing row via the weighted average cost.
type Position struct {
	ID           string
	UserID       string
	Symbol       string
	CompanyName  *string
	Shares       float64
	AverageCost  float64
	CurrentPrice *float64
	Sector       *string
	Industry     *string
	LastUpdated  time.Time
}

// EffectivePrice is the valuation price: the last seen quote price, or the
// cost basis when no quote record has ever been stored for the symbol.
func (p Position) EffectivePrice() float64 {
	if p.CurrentPrice != nil {
		return *p.CurrentPrice
	}
	return p.AverageCost
}

func (p Position) TotalValue() float64 { return p.Shares * p.EffectivePrice() }

func (p Position) TotalCost() float64 { return p.Shares * p.AverageCost }

func (p Position) GainLoss() float64 { return p.TotalValue() - p.TotalCost() }

func (p Position) GainLossPercent() float64 {
	cost := p.TotalCost()
	if cost == 0 {
		return 0
	}
	return p.GainLoss() / cost * 100
}

// WeightedAverageCost folds a new lot into an existing position's cost basis.
func WeightedAverageCost(oldShares, oldCost, addShares, addCost float64) float64 {
	total := oldShares + addShares
	if total == 0 {
		return 0
	}
	return (oldShares*oldCost + addShares*addCost) / total
}
