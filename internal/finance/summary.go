// Package finance computes the monthly financial summary of a user.
//
// The computation works on materialized collections only, so it does not
// depend on how or where the ledger is stored.
package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BigazyGalym/Diplom/internal/model"
)

// Input holds everything a summary is computed from. All records must
// belong to the same user.
type Input struct {
	Wallets      []*model.Wallet
	Transactions []*model.Transaction
	Budgets      []*model.Budget
	Debts        []*model.Debt
}

// CategoryTotal is the summed expense amount of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// BudgetUsage is a budget together with this month's matching expenses.
type BudgetUsage struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Spent    decimal.Decimal `json:"spent"`
}

// Summary is the monthly view of a user's finances.
type Summary struct {
	Year         int                  `json:"year"`
	Month        int                  `json:"month"`
	Income       decimal.Decimal      `json:"income"`
	Expenses     decimal.Decimal      `json:"expenses"`
	Categories   []CategoryTotal      `json:"categories"`
	Wallets      []*model.Wallet      `json:"wallets"`
	Transactions []*model.Transaction `json:"transactions"`
	Budgets      []BudgetUsage        `json:"budgets"`
	TotalLimit   decimal.Decimal      `json:"total_limit"`
	TotalSpent   decimal.Decimal      `json:"total_spent"`
	Debts        []*model.Debt        `json:"debts"`
}

// Summarize computes the summary for the calendar month containing today.
//
// Transactions outside that month are ignored. Wallets and debts are
// returned as given. Every budget yields its own entry even when several
// share a category, and TotalLimit sums all of them. TotalSpent is the
// month's total expenses, categorized under a budget or not.
func Summarize(today time.Time, in Input) *Summary {
	year, month, _ := today.Date()

	s := &Summary{
		Year:         year,
		Month:        int(month),
		Income:       decimal.Zero,
		Expenses:     decimal.Zero,
		Categories:   []CategoryTotal{},
		Wallets:      nonNil(in.Wallets),
		Transactions: []*model.Transaction{},
		Budgets:      make([]BudgetUsage, 0, len(in.Budgets)),
		TotalLimit:   decimal.Zero,
		Debts:        nonNil(in.Debts),
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, tx := range in.Transactions {
		y, m, _ := tx.Date.Date()
		if y != year || m != month {
			continue
		}
		s.Transactions = append(s.Transactions, tx)

		switch tx.Type {
		case model.TransactionIncome:
			s.Income = s.Income.Add(tx.Amount)
		case model.TransactionExpense:
			s.Expenses = s.Expenses.Add(tx.Amount)
			byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
		}
	}

	sort.SliceStable(s.Transactions, func(i, j int) bool {
		a, b := s.Transactions[i], s.Transactions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})

	for category, amount := range byCategory {
		s.Categories = append(s.Categories, CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		return s.Categories[i].Category < s.Categories[j].Category
	})

	for _, b := range in.Budgets {
		spent, ok := byCategory[b.Category]
		if !ok {
			spent = decimal.Zero
		}
		s.Budgets = append(s.Budgets, BudgetUsage{
			Category: b.Category,
			Limit:    b.Limit,
			Spent:    spent,
		})
		s.TotalLimit = s.TotalLimit.Add(b.Limit)
	}

	s.TotalSpent = s.Expenses

	return s
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
