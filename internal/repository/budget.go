package repository

import (
	"context"
	"fmt"

	"github.com/BigazyGalym/Diplom/internal/model"
)

// CreateBudget inserts a budget. Categories are not unique per user.
func (r *Repository) CreateBudget(ctx context.Context, budget *model.Budget) error {
	query := `
		INSERT INTO budgets (id, user_id, category, "limit", created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		budget.ID,
		budget.UserID,
		budget.Category,
		budget.Limit,
		budget.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create budget: %w", err)
	}

	return nil
}

// ListBudgets returns the user's budgets in creation order.
func (r *Repository) ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error) {
	query := `
		SELECT id, user_id, category, "limit", created_at
		FROM budgets
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []*model.Budget{}
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}

	return budgets, nil
}
