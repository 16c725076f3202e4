package renderer

import (
	"fmt"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/etnz/realreturn"
)

// NotApplicable is displayed in place of a value that has no meaning, like the
// FX change of the base currency.
const NotApplicable = "—"

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// Round rounds an amount to the minor unit of the currency, e.g. cents for USD, yen for JPY.
func Round(amount decimal.Decimal, currency string) decimal.Decimal {
	fraction := 2
	if c := money.GetCurrency(currency); c != nil {
		fraction = c.Fraction
	}
	return amount.Round(int32(fraction))
}

// symbol returns the display symbol of currency, followed by a space when it is a word.
func symbol(currency string) string {
	info, ok := realreturn.Lookup(currency)
	if !ok {
		return currency + " "
	}
	if utf8.RuneCountInString(info.Symbol) > 1 {
		return info.Symbol + " "
	}
	return info.Symbol
}

// FormatValue formats an amount with the currency symbol and a K, M or B suffix, e.g. "$150.00K".
func FormatValue(amount decimal.Decimal, currency string) string {
	sign := ""
	if amount.IsNegative() {
		sign, amount = "-", amount.Neg()
	}
	suffix := ""
	switch {
	case amount.GreaterThanOrEqual(billion):
		amount, suffix = amount.Div(billion), "B"
	case amount.GreaterThanOrEqual(million):
		amount, suffix = amount.Div(million), "M"
	case amount.GreaterThanOrEqual(thousand):
		amount, suffix = amount.Div(thousand), "K"
	}
	return sign + symbol(currency) + amount.StringFixed(2) + suffix
}

// FormatPercent formats a ratio as a signed percentage, e.g. "+12.34%".
func FormatPercent(ratio decimal.Decimal) string {
	return fmt.Sprintf("%+.2f%%", ratio.Shift(2).InexactFloat64())
}

// FormatRate formats an FX rate.
func FormatRate(rate float64) string { return fmt.Sprintf("%.4f", rate) }
