// Package money provides integer-safe monetary amounts in the smallest
// currency unit. Fractional arithmetic (percentages, display formatting)
// goes through shopspring/decimal so no float rounding ever touches a total.
package money

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Amount is a monetary value in the smallest currency unit (e.g. cents).
type Amount int64

// exponent is the number of decimal places in the display representation.
const exponent = 2

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a display-unit decimal (e.g. "12.50") to an Amount,
// rounding half away from zero to the smallest unit.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount(d.Shift(exponent).Round(0).IntPart())
}

// Decimal returns the amount as a display-unit decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -exponent)
}

// String formats the amount with a fixed number of decimal places.
func (a Amount) String() string {
	return a.Decimal().StringFixed(exponent)
}

// Parse converts a display-unit string (e.g. "450.00") to an Amount.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse amount %q", s)
	}
	return FromDecimal(d), nil
}

// Mul returns the amount multiplied by an integer quantity.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// Percent returns pct percent of the amount, rounded to the smallest unit.
func (a Amount) Percent(pct decimal.Decimal) Amount {
	d := decimal.NewFromInt(int64(a)).Mul(pct).Div(hundred)
	return Amount(d.Round(0).IntPart())
}

// FloorZero clamps negative amounts to zero.
func (a Amount) FloorZero() Amount {
	if a < 0 {
		return 0
	}
	return a
}

// Min returns the smaller of two amounts.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}
