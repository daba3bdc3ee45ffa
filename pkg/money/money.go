// Package money models currency amounts as integer minor units.
//
// Derived amounts (tax, percentage discounts) go through shopspring/decimal and are
// rounded half-up to whole cents exactly once, at the point they are derived.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount expressed in cents.
type Money int64

// Zero is the zero amount.
const Zero Money = 0

var hundred = decimal.NewFromInt(100)

func FromCents(cents int64) Money {
	return Money(cents)
}

// FromDecimal converts a major-unit decimal (10.005) into cents, rounding half-up.
func FromDecimal(d decimal.Decimal) Money {
	return Money(d.Mul(hundred).Round(0).IntPart())
}

// Parse reads a major-unit string such as "34.00" or "10".
func Parse(value string) (Money, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Zero, fmt.Errorf("money: empty amount")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Zero, fmt.Errorf("money: parse %q: %w", value, err)
	}
	return FromDecimal(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(value string) Money {
	m, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Cents() int64 {
	return int64(m)
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) Add(other Money) Money {
	return m + other
}

func (m Money) Sub(other Money) Money {
	return m - other
}

// Mul multiplies by an integral quantity; no rounding is involved.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// MulRate multiplies by a rate (0.20 for 20%) and rounds half-up to the cent.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money(decimal.NewFromInt(int64(m)).Mul(rate).Round(0).IntPart())
}

// Percent returns pct percent of m, rounded half-up to the cent.
func (m Money) Percent(pct decimal.Decimal) Money {
	return Money(decimal.NewFromInt(int64(m)).Mul(pct).Div(hundred).Round(0).IntPart())
}

func (m Money) Cmp(other Money) int {
	switch {
	case m < other:
		return -1
	case m > other:
		return 1
	default:
		return 0
	}
}

func (m Money) IsZero() bool     { return m == 0 }
func (m Money) IsNegative() bool { return m < 0 }

// ClampMin returns floor when m is below it.
func (m Money) ClampMin(floor Money) Money {
	if m < floor {
		return floor
	}
	return m
}

func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

func Max(a, b Money) Money {
	if a > b {
		return a
	}
	return b
}

// Sum adds amounts left to right.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}

// String renders the amount with two decimals, e.g. "34.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either "34.00" or 34.00.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = Zero
		return nil
	}
	raw = strings.Trim(raw, `"`)
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
