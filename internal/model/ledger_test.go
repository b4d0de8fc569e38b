package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransaction_SignedAmount(t *testing.T) {
	testCases := []struct {
		name   string
		txType TransactionType
		amount string
		want   string
	}{
		{"income adds", TransactionIncome, "1000.00", "1000"},
		{"expense subtracts", TransactionExpense, "200.50", "-200.5"},
		{"unknown type subtracts", TransactionType("refund"), "1.00", "-1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tx := &Transaction{Type: tc.txType, Amount: decimal.RequireFromString(tc.amount)}
			got := tx.SignedAmount()
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("SignedAmount() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestTransactionType_IsValid(t *testing.T) {
	if !TransactionIncome.IsValid() || !TransactionExpense.IsValid() {
		t.Error("income and expense must be valid")
	}
	if TransactionType("transfer").IsValid() {
		t.Error("transfer must not be valid")
	}
}

func TestDebtType_IsValid(t *testing.T) {
	if !DebtLent.IsValid() || !DebtBorrowed.IsValid() {
		t.Error("lent and borrowed must be valid")
	}
	if DebtType("gift").IsValid() {
		t.Error("gift must not be valid")
	}
}

func TestMonthBounds(t *testing.T) {
	testCases := []struct {
		name      string
		in        time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid month",
			in:        time.Date(2026, 10, 16, 15, 4, 5, 0, time.UTC),
			wantStart: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december rolls year",
			in:        time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC),
			wantStart: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := MonthBounds(tc.in)
			if !start.Equal(tc.wantStart) {
				t.Errorf("start = %v, want %v", start, tc.wantStart)
			}
			if !end.Equal(tc.wantEnd) {
				t.Errorf("end = %v, want %v", end, tc.wantEnd)
			}
		})
	}
}

func TestDateOnly(t *testing.T) {
	got := DateOnly(time.Date(2026, 3, 9, 22, 10, 0, 0, time.UTC))
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly() = %v, want %v", got, want)
	}
}

func TestMoneyHelpers(t *testing.T) {
	if got := FormatMoney(decimal.NewFromInt(1000)); got != "1000.00" {
		t.Errorf("FormatMoney(1000) = %s, want 1000.00", got)
	}
	if !HasMoneyPrecision(decimal.RequireFromString("12.34")) {
		t.Error("12.34 should fit two places")
	}
	if HasMoneyPrecision(decimal.RequireFromString("12.345")) {
		t.Error("12.345 should not fit two places")
	}
}

func TestMoneyScale(t *testing.T) {
	testCases := []struct {
		in       string
		tooSmall bool
		tooLarge bool
		exceeds  bool
	}{
		{"12.34", false, false, false},
		{"1.000000000000000000", false, false, false},
		{"1e-19", true, false, false},
		{"1e-20000000", true, false, false},
		{"9999999999.99", false, false, false},
		{"1e10", false, false, true},
		{"-1e10", false, false, true},
		{"1e11", false, true, true},
		{"1e20000000", false, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			d := decimal.RequireFromString(tc.in)
			if got := MoneyScaleTooSmall(d); got != tc.tooSmall {
				t.Errorf("MoneyScaleTooSmall = %v, want %v", got, tc.tooSmall)
			}
			if got := MoneyScaleTooLarge(d); got != tc.tooLarge {
				t.Errorf("MoneyScaleTooLarge = %v, want %v", got, tc.tooLarge)
			}
			if tc.tooSmall || tc.tooLarge {
				return
			}
			if got := ExceedsMaxMoney(d); got != tc.exceeds {
				t.Errorf("ExceedsMaxMoney = %v, want %v", got, tc.exceeds)
			}
		})
	}
}
