package domain

import "time"

type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

func ValidRiskTolerance(r RiskTolerance) bool {
	switch r {
	case RiskConservative, RiskModerate, RiskAggressive:
		return true
	}
	return false
}

type GoalCategory string

const (
	GoalRetirement GoalCategory = "retirement"
	GoalHouse      GoalCategory = "house"
	GoalEducation  GoalCategory = "education"
	GoalEmergency  GoalCategory = "emergency"
	GoalVacation   GoalCategory = "vacation"
	GoalOther      GoalCategory = "other"
)

func ValidGoalCategory(c GoalCategory) bool {
	switch c {
	case GoalRetirement, GoalHouse, GoalEducation, GoalEmergency, GoalVacation, GoalOther:
		return true
	}
	return false
}

type GoalPriority string

const (
	PriorityLow    GoalPriority = "low"
	PriorityMedium GoalPriority = "medium"
	PriorityHigh   GoalPriority = "high"
)

func ValidGoalPriority(p GoalPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Goal is a savings target with a deadline.
type Goal struct {
	ID                  string
	UserID              string
	Name                string
	Description         *string
	TargetAmount        float64
	CurrentAmount       float64
	TargetDate          time.Time
	RiskTolerance       RiskTolerance
	MonthlyContribution *float64
	Category            GoalCategory
	Priority            GoalPriority
	IsActive            bool
	IsAchieved          bool
	AchievedDate        *time.Time
	UpdatedAt           time.Time
}

// Progress returns completion as a percentage capped at 100.
func (g Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := g.CurrentAmount / g.TargetAmount * 100
	if p > 100 {
		return 100
	}
	return p
}

// MonthsRemaining counts whole calendar months until the target date,
// never negative.
func (g Goal) MonthsRemaining(now time.Time) int {
	months := (g.TargetDate.Year()-now.Year())*12 + int(g.TargetDate.Month()) - int(now.Month())
	if months < 0 {
		return 0
	}
	return months
}

// RequiredMonthlyContribution spreads the remaining amount over the months
// left. Past-due goals need the whole remainder at once.
func (g Goal) RequiredMonthlyContribution(now time.Time) float64 {
	remaining := g.TargetAmount - g.CurrentAmount
	if remaining <= 0 {
		return 0
	}
	months := g.MonthsRemaining(now)
	if months <= 0 {
		return remaining
	}
	return remaining / float64(months)
}
