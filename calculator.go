package realreturn

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/etnz/realreturn/date"
)

// Return arithmetic. Values and index levels are expected to be positive,
// and periods strictly longer than zero, Analyze validates them first.

var one = decimal.NewFromInt(1)

// YearsBetween returns the length of the period in years of 365.25 days.
func YearsBetween(start, end date.Date) float64 { return start.YearsUntil(end) }

// ConvertToCurrency converts an amount of base into another currency, given the
// units of that currency per unit of base.
func ConvertToCurrency(amount decimal.Decimal, rate float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(rate))
}

// NominalReturn is the relative change from start to end.
func NominalReturn(start, end decimal.Decimal) decimal.Decimal {
	return end.Div(start).Sub(one)
}

// NominalCAGR is the compound annual growth rate from start to end over years.
func NominalCAGR(start, end decimal.Decimal, years float64) decimal.Decimal {
	return annualize(NominalReturn(start, end), years)
}

// CumulativeInflation is the relative change of the price index over the period.
func CumulativeInflation(startIndex, endIndex float64) decimal.Decimal {
	return NominalReturn(decimal.NewFromFloat(startIndex), decimal.NewFromFloat(endIndex))
}

// AnnualizedInflation is the yearly inflation rate equivalent to cumulative over years.
func AnnualizedInflation(cumulative decimal.Decimal, years float64) decimal.Decimal {
	return annualize(cumulative, years)
}

// RealReturn applies the Fisher equation: (1+nominal)/(1+inflation) - 1.
func RealReturn(nominal, inflation decimal.Decimal) decimal.Decimal {
	return one.Add(nominal).Div(one.Add(inflation)).Sub(one)
}

// RealCAGR is the compound annual growth rate of the real return over years.
func RealCAGR(real decimal.Decimal, years float64) decimal.Decimal {
	return annualize(real, years)
}

// DiscountForInflation expresses value, measured at endIndex, in the money of startIndex.
func DiscountForInflation(value decimal.Decimal, startIndex, endIndex float64) decimal.Decimal {
	return value.Mul(decimal.NewFromFloat(startIndex)).Div(decimal.NewFromFloat(endIndex))
}

// FXChange is the relative change of a rate between two dates.
//
// Rates are units of a currency per unit of base, so a positive change means
// the currency lost value against the base.
func FXChange(startRate, endRate float64) decimal.Decimal {
	return NominalReturn(decimal.NewFromFloat(startRate), decimal.NewFromFloat(endRate))
}

// annualize turns a total growth rate into its yearly equivalent.
func annualize(total decimal.Decimal, years float64) decimal.Decimal {
	growth := one.Add(total).InexactFloat64()
	return decimal.NewFromFloat(math.Pow(growth, 1/years) - 1)
}
