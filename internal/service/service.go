// Package service provides business logic for the application.
package service

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/BigazyGalym/Diplom/internal/finance"
	"github.com/BigazyGalym/Diplom/internal/model"
)

// Clock returns the current time. Services take it explicitly so "today"
// can be pinned in tests.
type Clock func() time.Time

// SystemClock returns time.Now in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// UserStore persists users together with their onboarding records.
type UserStore interface {
	// CreateUserWithDefaults stores the user, its wallets and its first
	// API key in one atomic unit.
	CreateUserWithDefaults(ctx context.Context, user *model.User, wallets []*model.Wallet, key *model.APIKey) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

// LedgerStore persists wallets, transactions, budgets and debts.
// Every list call is scoped to the given user.
type LedgerStore interface {
	CreateWallet(ctx context.Context, wallet *model.Wallet) error
	ListWallets(ctx context.Context, userID string) ([]*model.Wallet, error)

	// CreateTransaction inserts the transaction and applies its signed
	// amount to the owning wallet atomically, returning the updated wallet.
	// The wallet must belong to tx.UserID.
	CreateTransaction(ctx context.Context, tx *model.Transaction) (*model.Wallet, error)
	// ListTransactions returns the user's transactions dated in [from, to).
	ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]*model.Transaction, error)

	CreateBudget(ctx context.Context, budget *model.Budget) error
	ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error)

	CreateDebt(ctx context.Context, debt *model.Debt) error
	ListDebts(ctx context.Context, userID string) ([]*model.Debt, error)
}

// SummaryCache stores computed summaries per user and period ("2006-01").
// Entries are versioned by a per-user generation. A reader stores its
// result under the generation it saw before loading, and every ledger write
// bumps the generation after commit, so a summary computed before a write
// is never served after it.
type SummaryCache interface {
	SummaryGeneration(ctx context.Context, userID string) (int64, error)
	GetSummary(ctx context.Context, userID, period string, gen int64) (*finance.Summary, error)
	SetSummary(ctx context.Context, userID, period string, gen int64, summary *finance.Summary, ttl time.Duration) error
	BumpSummaryGeneration(ctx context.Context, userID string) error
}

// periodOf formats the calendar month a summary is keyed by.
func periodOf(t time.Time) string {
	return t.Format("2006-01")
}

func newID() string {
	return ulid.Make().String()
}
