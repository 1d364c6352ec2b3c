package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"investtrack/internal/domain"
)

const goalCols = `id, user_id, name, description, target_amount, current_amount,
	target_date, risk_tolerance, monthly_contribution, category, priority,
	is_active, is_achieved, achieved_date, updated_at`

type GoalRepo struct{ db *DB }

func NewGoalRepo(db *DB) *GoalRepo { return &GoalRepo{db: db} }

func (r *GoalRepo) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+goalCols+` FROM goals WHERE user_id=$1 ORDER BY target_date`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *GoalRepo) GetByID(ctx context.Context, userID, id string) (domain.Goal, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+goalCols+` FROM goals WHERE user_id=$1 AND id=$2`, userID, id)
	g, err := scanGoal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Goal{}, domain.ErrNotFound
	}
	return g, err
}

func (r *GoalRepo) Create(ctx context.Context, g domain.Goal) (domain.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := r.db.Pool.Exec(ctx, `
        INSERT INTO goals (`+goalCols+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		g.ID, g.UserID, g.Name, g.Description, g.TargetAmount, g.CurrentAmount,
		g.TargetDate, g.RiskTolerance, g.MonthlyContribution, g.Category, g.Priority,
		g.IsActive, g.IsAchieved, g.AchievedDate, g.UpdatedAt)
	if err != nil {
		return domain.Goal{}, err
	}
	return g, nil
}

func (r *GoalRepo) Update(ctx context.Context, g domain.Goal) error {
	tag, err := r.db.Pool.Exec(ctx, `
        UPDATE goals SET
            name=$3, description=$4, target_amount=$5, current_amount=$6,
            target_date=$7, risk_tolerance=$8, monthly_contribution=$9,
            category=$10, priority=$11, is_active=$12, is_achieved=$13,
            achieved_date=$14, updated_at=$15
        WHERE user_id=$1 AND id=$2`,
		g.UserID, g.ID, g.Name, g.Description, g.TargetAmount, g.CurrentAmount,
		g.TargetDate, g.RiskTolerance, g.MonthlyContribution, g.Category, g.Priority,
		g.IsActive, g.IsAchieved, g.AchievedDate, g.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GoalRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM goals WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanGoal(row pgx.Row) (domain.Goal, error) {
	var g domain.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetAmount,
		&g.CurrentAmount, &g.TargetDate, &g.RiskTolerance, &g.MonthlyContribution,
		&g.Category, &g.Priority, &g.IsActive, &g.IsAchieved, &g.AchievedDate,
		&g.UpdatedAt)
	return g, err
}
