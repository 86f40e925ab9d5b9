// Package money formats amounts held in cents.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FormatCurrency rounds cents half away from zero to a whole cent and renders
// the amount in major units with two decimals, e.g. 2095 -> "20.95".
func FormatCurrency(cents decimal.Decimal) string {
	return cents.Round(0).Div(hundred).StringFixed(2)
}

func FormatCents(cents int64) string {
	return FormatCurrency(decimal.NewFromInt(cents))
}
