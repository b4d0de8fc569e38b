package repository

import (
	"context"
	"fmt"

	"github.com/BigazyGalym/Diplom/internal/model"
)

// CreateWallet inserts a wallet.
func (r *Repository) CreateWallet(ctx context.Context, wallet *model.Wallet) error {
	return createWallet(ctx, r.pool, wallet)
}

func createWallet(ctx context.Context, q querier, wallet *model.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, name, balance, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.Exec(ctx, query,
		wallet.ID,
		wallet.UserID,
		wallet.Name,
		wallet.Balance,
		wallet.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// ListWallets returns the user's wallets in creation order.
func (r *Repository) ListWallets(ctx context.Context, userID string) ([]*model.Wallet, error) {
	query := `
		SELECT id, user_id, name, balance, created_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	wallets := []*model.Wallet{}
	for rows.Next() {
		var w model.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Balance, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	return wallets, nil
}
