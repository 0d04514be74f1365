// Package money holds the currency arithmetic shared by the allocation engine.
//
// Every amount is a decimal.Decimal in major units (e.g. 12.34). Derived
// amounts and percentages are rounded to minor units with Round before they are
// displayed or persisted. Validation sums are compared with WithinEpsilon and
// are never pre-rounded.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of minor-unit digits (cents).
const Places = 2

var (
	// Epsilon is the absolute tolerance used by every allocation check: one cent.
	Epsilon = decimal.New(1, -Places)

	// Hundred is 100, the percentage base.
	Hundred = decimal.NewFromInt(100)
)

// Round rounds d to two decimal places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// WithinEpsilon reports whether |a - b| < 0.01.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Epsilon)
}

// Sum adds values. An empty call returns zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Cents converts d to whole minor units, rounding first.
func Cents(d decimal.Decimal) int64 {
	return Round(d).Shift(Places).IntPart()
}

// FromCents converts minor units back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Places)
}

// Parse reads a user-supplied amount such as "12.50" or "-3".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// Percent returns part/whole*100 rounded to two places, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Round(part.Mul(Hundred).Div(whole))
}

// PercentOf returns pct% of total rounded to two places.
func PercentOf(pct, total decimal.Decimal) decimal.Decimal {
	return Round(pct.Div(Hundred).Mul(total))
}

// Distribute splits total into n parts that differ by at most one cent and sum
// exactly to the cent-rounded total. Leftover cents go one each to the first
// parts, so the result is stable for a given participant order. Negative totals
// (discounts) are distributed the same way with negative cents.
func Distribute(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	cents := Cents(total)
	base := cents / int64(n)
	rem := cents % int64(n)

	step := int64(1)
	if rem < 0 {
		step = -1
		rem = -rem
	}

	parts := make([]decimal.Decimal, n)
	for i := range parts {
		c := base
		if int64(i) < rem {
			c += step
		}
		parts[i] = FromCents(c)
	}
	return parts
}

// Format renders d with exactly two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
