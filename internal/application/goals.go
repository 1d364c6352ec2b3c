package application

import (
	"context"
	"fmt"
	"time"

	"investtrack/internal/domain"
)

// GoalView decorates a goal with its derived planning numbers.
type GoalView struct {
	domain.Goal
	Progress                    float64
	MonthsRemaining             int
	RequiredMonthlyContribution float64
}

// GoalInput carries the writable goal fields; nil pointers on update mean
// "leave unchanged".
type GoalInput struct {
	Name                *string
	Description         *string
	TargetAmount        *float64
	CurrentAmount       *float64
	TargetDate          *time.Time
	RiskTolerance       *domain.RiskTolerance
	MonthlyContribution *float64
	Category            *domain.GoalCategory
	Priority            *domain.GoalPriority
	IsActive            *bool
}

type GoalService struct {
	goals GoalRepo
	clock Clock
}

func NewGoalService(goals GoalRepo) *GoalService {
	return &GoalService{goals: goals, clock: realClock{}}
}

func (s *GoalService) view(g domain.Goal) GoalView {
	now := s.clock.Now()
	return GoalView{
		Goal:                        g,
		Progress:                    g.Progress(),
		MonthsRemaining:             g.MonthsRemaining(now),
		RequiredMonthlyContribution: g.RequiredMonthlyContribution(now),
	}
}

func (s *GoalService) List(ctx context.Context, userID string) ([]GoalView, error) {
	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, s.view(g))
	}
	return out, nil
}

func (s *GoalService) Get(ctx context.Context, userID, id string) (GoalView, error) {
	g, err := s.goals.GetByID(ctx, userID, id)
	if err != nil {
		return GoalView{}, err
	}
	return s.view(g), nil
}

func (s *GoalService) Create(ctx context.Context, userID string, in GoalInput) (GoalView, error) {
	if in.Name == nil || *in.Name == "" || len(*in.Name) > 100 {
		return GoalView{}, fmt.Errorf("%w: name must be 1-100 characters", ErrBadRequest)
	}
	if in.TargetAmount == nil || *in.TargetAmount <= 0 {
		return GoalView{}, fmt.Errorf("%w: target amount must be positive", ErrBadRequest)
	}
	if in.TargetDate == nil {
		return GoalView{}, fmt.Errorf("%w: target date required", ErrBadRequest)
	}

	g := domain.Goal{
		UserID:        userID,
		Name:          *in.Name,
		Description:   in.Description,
		TargetAmount:  *in.TargetAmount,
		TargetDate:    *in.TargetDate,
		RiskTolerance: domain.RiskModerate,
		Category:      domain.GoalOther,
		Priority:      domain.PriorityMedium,
		IsActive:      true,
		UpdatedAt:     s.clock.Now(),
	}
	if in.CurrentAmount != nil {
		if *in.CurrentAmount < 0 {
			return GoalView{}, fmt.Errorf("%w: current amount must not be negative", ErrBadRequest)
		}
		g.CurrentAmount = *in.CurrentAmount
	}
	if in.MonthlyContribution != nil {
		g.MonthlyContribution = in.MonthlyContribution
	}
	if err := applyGoalEnums(&g, in); err != nil {
		return GoalView{}, err
	}
	s.markAchievement(&g)

	created, err := s.goals.Create(ctx, g)
	if err != nil {
		return GoalView{}, fmt.Errorf("create goal: %w", err)
	}
	return s.view(created), nil
}

func (s *GoalService) Update(ctx context.Context, userID, id string, in GoalInput) (GoalView, error) {
	g, err := s.goals.GetByID(ctx, userID, id)
	if err != nil {
		return GoalView{}, err
	}
	if in.Name != nil {
		if *in.Name == "" || len(*in.Name) > 100 {
			return GoalView{}, fmt.Errorf("%w: name must be 1-100 characters", ErrBadRequest)
		}
		g.Name = *in.Name
	}
	if in.Description != nil {
		g.Description = in.Description
	}
	if in.TargetAmount != nil {
		if *in.TargetAmount <= 0 {
			return GoalView{}, fmt.Errorf("%w: target amount must be positive", ErrBadRequest)
		}
		g.TargetAmount = *in.TargetAmount
	}
	if in.CurrentAmount != nil {
		if *in.CurrentAmount < 0 {
			return GoalView{}, fmt.Errorf("%w: current amount must not be negative", ErrBadRequest)
		}
		g.CurrentAmount = *in.CurrentAmount
	}
	if in.TargetDate != nil {
		g.TargetDate = *in.TargetDate
	}
	if in.MonthlyContribution != nil {
		g.MonthlyContribution = in.MonthlyContribution
	}
	if in.IsActive != nil {
		g.IsActive = *in.IsActive
	}
	if err := applyGoalEnums(&g, in); err != nil {
		return GoalView{}, err
	}
	g.UpdatedAt = s.clock.Now()
	s.markAchievement(&g)

	if err := s.goals.Update(ctx, g); err != nil {
		return GoalView{}, fmt.Errorf("update goal: %w", err)
	}
	return s.view(g), nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	return s.goals.Delete(ctx, userID, id)
}

func applyGoalEnums(g *domain.Goal, in GoalInput) error {
	if in.RiskTolerance != nil {
		if !domain.ValidRiskTolerance(*in.RiskTolerance) {
			return fmt.Errorf("%w: invalid risk tolerance", ErrBadRequest)
		}
		g.RiskTolerance = *in.RiskTolerance
	}
	if in.Category != nil {
		if !domain.ValidGoalCategory(*in.Category) {
			return fmt.Errorf("%w: invalid category", ErrBadRequest)
		}
		g.Category = *in.Category
	}
	if in.Priority != nil {
		if !domain.ValidGoalPriority(*in.Priority) {
			return fmt.Errorf("%w: invalid priority", ErrBadRequest)
		}
		g.Priority = *in.Priority
	}
	return nil
}

// markAchievement flips the achieved flag the first time the saved amount
// reaches the target.
func (s *GoalService) markAchievement(g *domain.Goal) {
	if g.IsAchieved || g.CurrentAmount < g.TargetAmount {
		return
	}
	g.IsAchieved = true
	now := s.clock.Now()
	g.AchievedDate = &now
}
