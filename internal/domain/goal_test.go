package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGoal_Progress(t *testing.T) {
	g := Goal{TargetAmount: 1000, CurrentAmount: 250}
	require.InDelta(t, 25.0, g.Progress(), 1e-9)

	over := Goal{TargetAmount: 1000, CurrentAmount: 1500}
	require.InDelta(t, 100.0, over.Progress(), 1e-9)
}

func TestGoal_RequiredMonthlyContribution(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	g := Goal{
		TargetAmount:  1200,
		CurrentAmount: 200,
		TargetDate:    time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
	}
	require.Equal(t, 10, g.MonthsRemaining(now))
	require.InDelta(t, 100.0, g.RequiredMonthlyContribution(now), 1e-9)

	pastDue := Goal{TargetAmount: 500, CurrentAmount: 100, TargetDate: now.AddDate(0, -1, 0)}
	require.InDelta(t, 400.0, pastDue.RequiredMonthlyContribution(now), 1e-9)
}
