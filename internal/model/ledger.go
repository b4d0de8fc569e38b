package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tells whether a transaction adds to or takes from a wallet.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// IsValid checks if the transaction type is known.
func (t TransactionType) IsValid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// DebtType tells the direction of a debt.
type DebtType string

const (
	DebtLent     DebtType = "lent"
	DebtBorrowed DebtType = "borrowed"
)

// IsValid checks if the debt type is known.
func (t DebtType) IsValid() bool {
	return t == DebtLent || t == DebtBorrowed
}

// DefaultCategory is used when a transaction is created without a category.
const DefaultCategory = "Other"

// Wallet is a named balance bucket owned by a user.
// Balance equals its opening balance plus the signed sum of its transactions.
type Wallet struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// Transaction is a single income or expense event on one wallet.
// Date is assigned at insert time and never changes afterwards.
type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	WalletID  string          `json:"wallet_id"`
	Type      TransactionType `json:"type"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

// SignedAmount returns the change this transaction applies to its wallet.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Budget is a per-category spending limit evaluated over the current month.
type Budget struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	CreatedAt time.Time       `json:"created_at"`
}

// Debt is a lent or borrowed obligation tracked outside wallet balances.
// Nothing flips Returned automatically.
type Debt struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Type         DebtType        `json:"type"`
	Counterparty string          `json:"counterparty"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      time.Time       `json:"due_date"`
	Returned     bool            `json:"returned"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns [first day of t's month, first day of the next month).
func MonthBounds(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
