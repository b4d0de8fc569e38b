package repository

import (
	"context"
	"fmt"

	"github.com/BigazyGalym/Diplom/internal/model"
)

// CreateDebt inserts a debt.
func (r *Repository) CreateDebt(ctx context.Context, debt *model.Debt) error {
	query := `
		INSERT INTO debts (id, user_id, type, counterparty, amount, due_date, returned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		debt.ID,
		debt.UserID,
		string(debt.Type),
		debt.Counterparty,
		debt.Amount,
		debt.DueDate,
		debt.Returned,
		debt.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create debt: %w", err)
	}

	return nil
}

// ListDebts returns the user's debts ordered by due date.
func (r *Repository) ListDebts(ctx context.Context, userID string) ([]*model.Debt, error) {
	query := `
		SELECT id, user_id, type, counterparty, amount, due_date, returned, created_at
		FROM debts
		WHERE user_id = $1
		ORDER BY due_date, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	debts := []*model.Debt{}
	for rows.Next() {
		var d model.Debt
		var debtType string
		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&debtType,
			&d.Counterparty,
			&d.Amount,
			&d.DueDate,
			&d.Returned,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		d.Type = model.DebtType(debtType)
		debts = append(debts, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debts: %w", err)
	}

	return debts, nil
}
