package model

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of fractional digits stored for every amount.
const MoneyPlaces = 2

// Exponent bounds for decoded amounts. Comparing or truncating a decimal
// rescales it to its exponent, so anything outside this window is
// rejected before any arithmetic runs.
const (
	minMoneyExponent = -(MoneyPlaces + 16)
	maxMoneyExponent = 10
)

// MaxMoney is the exclusive upper bound of a NUMERIC(12,2) column.
var MaxMoney = decimal.New(1, 10)

// FormatMoney renders an amount with exactly two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// MoneyScaleTooSmall reports whether d carries more fractional digits than
// can be checked cheaply, as in "1e-20000000".
func MoneyScaleTooSmall(d decimal.Decimal) bool {
	return d.Exponent() < minMoneyExponent
}

// MoneyScaleTooLarge reports whether d's exponent alone puts it past
// MaxMoney, as in "1e20000000".
func MoneyScaleTooLarge(d decimal.Decimal) bool {
	return d.Exponent() > maxMoneyExponent
}

// HasMoneyPrecision reports whether d fits in two fractional digits.
// Callers must reject MoneyScaleTooSmall values first.
func HasMoneyPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyPlaces))
}

// ExceedsMaxMoney reports whether |d| does not fit a NUMERIC(12,2) column.
func ExceedsMaxMoney(d decimal.Decimal) bool {
	return !d.Abs().LessThan(MaxMoney)
}
