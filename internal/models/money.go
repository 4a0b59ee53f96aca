package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxAmountCents is the largest amount the invoices.amount INT column holds
const MaxAmountCents int64 = math.MaxInt32

var (
	centsPerUnit = decimal.NewFromInt(100)
	maxInt64     = decimal.NewFromInt(math.MaxInt64)
	minInt64     = decimal.NewFromInt(math.MinInt64)
)

// CentsFromAmount converts a major-unit amount to cents, rounding half away from zero.
// Results beyond the int64 range saturate at its bounds.
func CentsFromAmount(amount decimal.Decimal) int64 {
	cents := amount.Mul(centsPerUnit).Round(0)
	switch {
	case cents.GreaterThan(maxInt64):
		return math.MaxInt64
	case cents.LessThan(minInt64):
		return math.MinInt64
	}
	return cents.IntPart()
}

// AmountFromCents converts cents back to a major-unit amount
func AmountFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatCurrency renders cents as a USD string, e.g. 4999 -> "$49.99"
func FormatCurrency(cents int64) string {
	amount := AmountFromCents(cents)
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}
