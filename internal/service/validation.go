package service

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/BigazyGalym/Diplom/internal/model"
)

// Field limits, matching the column sizes in migrations/.
const (
	maxWalletNameLength   = 50
	maxCategoryLength     = 50
	maxCounterpartyLength = 100
	maxNameLength         = 150
	maxPhoneLength        = 15
	maxEmailLength        = 254
)

// checkText validates a required, trimmed string.
func (v *validator) checkText(field, value string, maxLen int) {
	v.check(value != "", field, "this field is required")
	v.check(utf8.RuneCountInString(value) <= maxLen, field, "ensure this field has no more than "+strconv.Itoa(maxLen)+" characters")
}

const (
	msgMoneyPlaces = "ensure that there are no more than 2 decimal places"
	msgMoneyDigits = "ensure that there are no more than 12 digits in total"
)

// checkMoney validates precision and magnitude of an amount. The exponent
// is checked before any arithmetic touches d.
func (v *validator) checkMoney(field string, d decimal.Decimal) {
	switch {
	case model.MoneyScaleTooSmall(d):
		v.check(false, field, msgMoneyPlaces)
	case model.MoneyScaleTooLarge(d):
		v.check(false, field, msgMoneyDigits)
	default:
		v.check(model.HasMoneyPrecision(d), field, msgMoneyPlaces)
		v.check(!model.ExceedsMaxMoney(d), field, msgMoneyDigits)
	}
}

// checkPositiveMoney validates a required amount that must be > 0.
func (v *validator) checkPositiveMoney(field string, d *decimal.Decimal) {
	if d == nil {
		v.check(false, field, "this field is required")
		return
	}
	v.check(d.IsPositive(), field, "ensure this value is greater than zero")
	v.checkMoney(field, *d)
}

func clean(s string) string {
	return strings.TrimSpace(s)
}
