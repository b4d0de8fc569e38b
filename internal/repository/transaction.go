package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BigazyGalym/Diplom/internal/model"
)

// CreateTransaction applies the transaction's signed amount to its wallet
// and inserts the transaction in one database transaction.
//
// The UPDATE takes the wallet's row lock first, so concurrent writers on
// one wallet are serialized and no increment is lost. A wallet that does
// not exist or belongs to another user matches no row and nothing is
// written. A balance that would leave NUMERIC(12,2) fails with
// ErrBalanceOutOfRange.
func (r *Repository) CreateTransaction(ctx context.Context, t *model.Transaction) (*model.Wallet, error) {
	var wallet model.Wallet

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		update := `
			UPDATE wallets
			SET balance = balance + $3
			WHERE id = $1 AND user_id = $2
			RETURNING id, user_id, name, balance, created_at
		`
		err := tx.QueryRow(ctx, update, t.WalletID, t.UserID, t.SignedAmount()).Scan(
			&wallet.ID,
			&wallet.UserID,
			&wallet.Name,
			&wallet.Balance,
			&wallet.CreatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrWalletNotFound
			}
			if isNumericOutOfRange(err) {
				return ErrBalanceOutOfRange
			}
			return fmt.Errorf("failed to update wallet balance: %w", err)
		}

		insert := `
			INSERT INTO transactions (id, user_id, wallet_id, type, category, amount, date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err = tx.Exec(ctx, insert,
			t.ID,
			t.UserID,
			t.WalletID,
			string(t.Type),
			t.Category,
			t.Amount,
			t.Date,
			t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &wallet, nil
}

// ListTransactions returns the user's transactions dated in [from, to),
// ordered by date then id.
func (r *Repository) ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]*model.Transaction, error) {
	query := `
		SELECT id, user_id, wallet_id, type, category, amount, date, created_at
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, id
	`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []*model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		var txType string
		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.WalletID,
			&txType,
			&t.Category,
			&t.Amount,
			&t.Date,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Type = model.TransactionType(txType)
		txs = append(txs, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}
