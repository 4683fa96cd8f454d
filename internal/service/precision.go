package service

import "github.com/shopspring/decimal"

// All money and quantity comparisons use a fixed two-digit tolerance.
const precisionDigits = 2

func floatIsZero(d decimal.Decimal) bool {
	return d.Round(precisionDigits).IsZero()
}

func floatCompare(a, b decimal.Decimal) int {
	return a.Round(precisionDigits).Cmp(b.Round(precisionDigits))
}
