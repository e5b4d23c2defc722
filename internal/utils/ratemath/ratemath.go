package ratemath

import (
	"github.com/shopspring/decimal"
)

// DivPrecision is the number of decimal places carried through every rate
// division. It is wide enough that reversing a reversed rate and composing
// cross rates round-trip without visible drift at booking scales.
const DivPrecision = 34

var one = decimal.NewFromInt(1)

// Reverse maps a (from, to) rate r to the (to, from) rate 1/r.
func Reverse(r decimal.Decimal) decimal.Decimal {
	return one.DivRound(r, DivPrecision)
}

// Cross composes a cross rate from two pivot legs: given rate(pivot->to) and
// rate(pivot->from), the (from, to) rate is their quotient. A single division
// is used rather than two successive multiplications so rounding error does
// not compound.
func Cross(pivotTo, pivotFrom decimal.Decimal) decimal.Decimal {
	return pivotTo.DivRound(pivotFrom, DivPrecision)
}

// Convert prices an amount into the counter currency: amount * rate, rounded
// half-down at the given scale.
func Convert(amount, rate decimal.Decimal, scale int32) decimal.Decimal {
	return RoundHalfDown(amount.Mul(rate), scale)
}

// ConvertBack prices an amount out of the counter currency: amount / rate,
// rounded half-down at the given scale.
func ConvertBack(amount, rate decimal.Decimal, scale int32) decimal.Decimal {
	return RoundHalfDown(amount.DivRound(rate, DivPrecision), scale)
}

// RoundHalfDown rounds to the given number of decimal places, breaking exact
// halves toward zero.
func RoundHalfDown(d decimal.Decimal, places int32) decimal.Decimal {
	shifted := d.Shift(places)
	frac := shifted.Sub(shifted.Truncate(0)).Abs()
	if frac.Equal(decimal.New(5, -1)) {
		return shifted.Truncate(0).Shift(-places)
	}
	return d.Round(places)
}
