package shared

import "github.com/shopspring/decimal"

// All monetary amounts in this service are int64 minor units (cents).
// Percentage and tax arithmetic goes through shopspring/decimal so that
// intermediate results carry no binary-float drift; rounding back to the
// minor unit happens exactly once per derived amount.

// PercentOf returns amount × percent/100, rounded half-up to the minor unit.
func PercentOf(amountCents int64, percent decimal.Decimal) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(percent).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// RateOf returns amount × rate (e.g. rate 0.24 for 24% VAT), rounded half-up
// to the minor unit.
func RateOf(amountCents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(rate).
		Round(0).
		IntPart()
}

// ClampNonNegative floors an amount at zero.
func ClampNonNegative(amountCents int64) int64 {
	if amountCents < 0 {
		return 0
	}
	return amountCents
}
