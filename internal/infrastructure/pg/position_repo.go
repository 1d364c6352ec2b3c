package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"investtrack/internal/application"
	"investtrack/internal/domain"
)

const positionCols = `id, user_id, symbol, company_name, shares, average_cost,
	current_price, sector, industry, last_updated`

type PositionRepo struct{ db *DB }

func NewPositionRepo(db *DB) *PositionRepo { return &PositionRepo{db: db} }

func (r *PositionRepo) ListByUser(ctx context.Context, userID string) ([]domain.Position, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+positionCols+` FROM positions WHERE user_id=$1 ORDER BY symbol`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PositionRepo) GetByID(ctx context.Context, userID, id string) (domain.Position, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+positionCols+` FROM positions WHERE user_id=$1 AND id=$2`, userID, id)
	p, err := scanPosition(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Position{}, domain.ErrNotFound
	}
	return p, err
}

func (r *PositionRepo) GetBySymbol(ctx context.Context, userID, symbol string) (domain.Position, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+positionCols+` FROM positions WHERE user_id=$1 AND symbol=$2`, userID, symbol)
	p, err := scanPosition(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Position{}, domain.ErrNotFound
	}
	return p, err
}

func (r *PositionRepo) Create(ctx context.Context, p domain.Position) (domain.Position, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.Pool.Exec(ctx, `
        INSERT INTO positions (`+positionCols+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.UserID, p.Symbol, p.CompanyName, p.Shares, p.AverageCost,
		p.CurrentPrice, p.Sector, p.Industry, p.LastUpdated)
	if isUniqueViolation(err) {
		return domain.Position{}, application.ErrConflict
	}
	if err != nil {
		return domain.Position{}, err
	}
	return p, nil
}

func (r *PositionRepo) Update(ctx context.Context, p domain.Position) error {
	tag, err := r.db.Pool.Exec(ctx, `
        UPDATE positions SET
            company_name=$3, shares=$4, average_cost=$5, current_price=$6,
            sector=$7, industry=$8, last_updated=$9
        WHERE user_id=$1 AND id=$2`,
		p.UserID, p.ID, p.CompanyName, p.Shares, p.AverageCost, p.CurrentPrice,
		p.Sector, p.Industry, p.LastUpdated)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PositionRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM positions WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PositionRepo) DistinctSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT DISTINCT symbol FROM positions ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanPosition(row pgx.Row) (domain.Position, error) {
	var p domain.Position
	err := row.Scan(&p.ID, &p.UserID, &p.Symbol, &p.CompanyName, &p.Shares,
		&p.AverageCost, &p.CurrentPrice, &p.Sector, &p.Industry, &p.LastUpdated)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
