// Package pricing holds the pure quoting logic: rate tables, document unit
// counting and the itemized quote calculation. Nothing in here touches the
// database or the network.
package pricing

import (
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in cents. All quote arithmetic is done on integers so
// that a breakdown always sums to its subtotal exactly.
type Money int64

// Cents returns the raw integer amount.
func (m Money) Cents() int64 { return int64(m) }

// Dollars returns the amount as a float, for display only.
func (m Money) Dollars() float64 { return float64(m) / 100 }

// Min returns the smaller of two amounts.
func (m Money) Min(other Money) Money {
	if m < other {
		return m
	}
	return other
}

// String formats the amount as "1234.50".
func (m Money) String() string {
	neg := m < 0
	abs := int64(m)
	if neg {
		abs = -abs
	}
	s := fmt.Sprintf("%d.%02d", abs/100, abs%100)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number in major units ("250.5" or 250.50).
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("pricing: invalid money value %q: %w", raw, err)
	}
	*m = FromDollars(f)
	return nil
}

// FromDollars converts a major-unit amount to cents, rounding half away from zero.
func FromDollars(d float64) Money {
	return Money(math.Round(d * 100))
}

// Sum adds up amounts.
func Sum(values ...Money) Money {
	var total Money
	for _, v := range values {
		total += v
	}
	return total
}
