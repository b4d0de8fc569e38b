// Package dto provides Data Transfer Objects for API requests and responses.
//
// Money is rendered as a string with two fractional digits ("1000.00") and
// dates as YYYY-MM-DD. Request amounts may be JSON strings or numbers.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BigazyGalym/Diplom/internal/model"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateWalletRequest represents the request body for creating a wallet.
type CreateWalletRequest struct {
	Name    string           `json:"name"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTransactionRequest represents the request body for creating a
// transaction. There is no date field: the server stamps today's date.
type CreateTransactionRequest struct {
	WalletID string           `json:"wallet"`
	Type     string           `json:"type"`
	Category string           `json:"category,omitempty"`
	Amount   *decimal.Decimal `json:"amount"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID       string `json:"id"`
	WalletID string `json:"wallet"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
}

// CreateTransactionResponse is the created transaction together with the
// wallet as it stands after the balance update.
type CreateTransactionResponse struct {
	TransactionResponse
	Wallet WalletResponse `json:"wallet_after"`
}

// CreateBudgetRequest represents the request body for creating a budget.
type CreateBudgetRequest struct {
	Category string           `json:"category"`
	Limit    *decimal.Decimal `json:"limit,omitempty"`
}

// BudgetResponse represents a budget in API responses.
type BudgetResponse struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

// CreateDebtRequest represents the request body for creating a debt.
type CreateDebtRequest struct {
	Type         string           `json:"type"`
	Counterparty string           `json:"counterparty"`
	Amount       *decimal.Decimal `json:"amount"`
	DueDate      string           `json:"due_date"`
	Returned     bool             `json:"returned,omitempty"`
}

// DebtResponse represents a debt in API responses.
type DebtResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Counterparty string `json:"counterparty"`
	Amount       string `json:"amount"`
	DueDate      string `json:"due_date"`
	Returned     bool   `json:"returned"`
}

// ListResponse wraps a collection.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// ToWalletResponse converts a model.Wallet to WalletResponse.
func ToWalletResponse(w *model.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID,
		Name:      w.Name,
		Balance:   model.FormatMoney(w.Balance),
		CreatedAt: w.CreatedAt,
	}
}

// ToTransactionResponse converts a model.Transaction to TransactionResponse.
func ToTransactionResponse(t *model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:       t.ID,
		WalletID: t.WalletID,
		Type:     string(t.Type),
		Category: t.Category,
		Amount:   model.FormatMoney(t.Amount),
		Date:     t.Date.Format(DateLayout),
	}
}

// ToBudgetResponse converts a model.Budget to BudgetResponse.
func ToBudgetResponse(b *model.Budget) BudgetResponse {
	return BudgetResponse{ID: b.ID, Category: b.Category, Limit: model.FormatMoney(b.Limit)}
}

// ToDebtResponse converts a model.Debt to DebtResponse.
func ToDebtResponse(d *model.Debt) DebtResponse {
	return DebtResponse{
		ID:           d.ID,
		Type:         string(d.Type),
		Counterparty: d.Counterparty,
		Amount:       model.FormatMoney(d.Amount),
		DueDate:      d.DueDate.Format(DateLayout),
		Returned:     d.Returned,
	}
}

// mapAll converts every element with fn. The result is never nil.
func mapAll[S any, T any](in []S, fn func(S) T) []T {
	out := make([]T, 0, len(in))
	for _, s := range in {
		out = append(out, fn(s))
	}
	return out
}

// ToWalletList converts wallets.
func ToWalletList(ws []*model.Wallet) ListResponse[WalletResponse] {
	return ListResponse[WalletResponse]{Items: mapAll(ws, ToWalletResponse)}
}

// ToBudgetList converts budgets.
func ToBudgetList(bs []*model.Budget) ListResponse[BudgetResponse] {
	return ListResponse[BudgetResponse]{Items: mapAll(bs, ToBudgetResponse)}
}

// ToDebtList converts debts.
func ToDebtList(ds []*model.Debt) ListResponse[DebtResponse] {
	return ListResponse[DebtResponse]{Items: mapAll(ds, ToDebtResponse)}
}
