package dto

import (
	"github.com/BigazyGalym/Diplom/internal/finance"
	"github.com/BigazyGalym/Diplom/internal/model"
)

// CategoryTotalResponse is the expense total of one category.
type CategoryTotalResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// BudgetUsageResponse is a budget with this month's spending.
type BudgetUsageResponse struct {
	Category string `json:"category"`
	Limit    string `json:"limit"`
	Spent    string `json:"spent"`
}

// SummaryResponse represents the monthly finance summary.
type SummaryResponse struct {
	Year         int                     `json:"year"`
	Month        int                     `json:"month"`
	Income       string                  `json:"income"`
	Expenses     string                  `json:"expenses"`
	Categories   []CategoryTotalResponse `json:"categories"`
	Wallets      []WalletResponse        `json:"wallets"`
	Transactions []TransactionResponse   `json:"transactions"`
	Budgets      []BudgetUsageResponse   `json:"budgets"`
	TotalLimit   string                  `json:"total_limit"`
	TotalSpent   string                  `json:"total_spent"`
	Debts        []DebtResponse          `json:"debts"`
}

// ToSummaryResponse converts a finance.Summary to SummaryResponse.
func ToSummaryResponse(s *finance.Summary) SummaryResponse {
	return SummaryResponse{
		Year:     s.Year,
		Month:    s.Month,
		Income:   model.FormatMoney(s.Income),
		Expenses: model.FormatMoney(s.Expenses),
		Categories: mapAll(s.Categories, func(c finance.CategoryTotal) CategoryTotalResponse {
			return CategoryTotalResponse{Category: c.Category, Amount: model.FormatMoney(c.Amount)}
		}),
		Wallets:      mapAll(s.Wallets, ToWalletResponse),
		Transactions: mapAll(s.Transactions, ToTransactionResponse),
		Budgets: mapAll(s.Budgets, func(b finance.BudgetUsage) BudgetUsageResponse {
			return BudgetUsageResponse{
				Category: b.Category,
				Limit:    model.FormatMoney(b.Limit),
				Spent:    model.FormatMoney(b.Spent),
			}
		}),
		TotalLimit: model.FormatMoney(s.TotalLimit),
		TotalSpent: model.FormatMoney(s.TotalSpent),
		Debts:      mapAll(s.Debts, ToDebtResponse),
	}
}
