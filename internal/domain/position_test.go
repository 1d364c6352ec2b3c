package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightedAverageCost(t *testing.T) {
	// 10 shares @ 130 plus 5 shares @ 100 => 120
	require.InDelta(t, 120.0, WeightedAverageCost(10, 130, 5, 100), 1e-9)
}

func TestWeightedAverageCost_ZeroTotal(t *testing.T) {
	require.Zero(t, WeightedAverageCost(0, 0, 0, 0))
}

func TestPosition_EffectivePrice_FallsBackToCost(t *testing.T) {
	p := Position{Shares: 3, AverageCost: 50}
	require.InDelta(t, 50.0, p.EffectivePrice(), 1e-9)
	require.InDelta(t, 150.0, p.TotalValue(), 1e-9)
	require.Zero(t, p.GainLoss())
}

func TestPosition_Metrics(t *testing.T) {
	price := 60.0
	p := Position{Shares: 10, AverageCost: 50, CurrentPrice: &price}
	require.InDelta(t, 600.0, p.TotalValue(), 1e-9)
	require.InDelta(t, 500.0, p.TotalCost(), 1e-9)
	require.InDelta(t, 100.0, p.GainLoss(), 1e-9)
	require.InDelta(t, 20.0, p.GainLossPercent(), 1e-9)
}
