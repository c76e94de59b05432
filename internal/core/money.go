// Package core provides the domain model for the fish market ledger:
// fixed-precision money, entities, transactions and their validation rules.
//
// This file implements Money, a two-decimal-place currency amount backed by
// shopspring/decimal. Every arithmetic operation rounds half-up to two
// decimals immediately so that repeated additions can never accumulate
// binary floating-point drift.
package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an immutable currency amount with exactly two fractional digits.
// The zero value is a valid Rs.0.00 amount.
type Money struct {
	dec decimal.Decimal
}

// ParseMoney converts a decimal string to Money with half-up rounding on the
// third decimal place. It accepts both dot (12.34) and comma (12,34)
// separators. Returns ErrInvalidAmount for malformed input.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12.345") -> 12.35 (rounds up)
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{dec: d.Round(2)}, nil
}

// MoneyFromFloat converts a float64 to Money, rejecting NaN and Infinity.
func MoneyFromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, ErrInvalidAmount
	}
	return Money{dec: decimal.NewFromFloat(f).Round(2)}, nil
}

// MoneyFromCents builds a Money from an integer number of cents. This is the
// bridge from persisted values, which are stored as cents so that SQL
// aggregation stays exact.
func MoneyFromCents(cents int64) Money {
	return Money{dec: decimal.New(cents, -2)}
}

// Cents returns the amount as integer cents for persistence.
func (m Money) Cents() int64 {
	return m.dec.Shift(2).IntPart()
}

// Add returns m + o, rounded to two decimals.
func (m Money) Add(o Money) Money {
	return Money{dec: m.dec.Add(o.dec).Round(2)}
}

// Sub returns m - o, rounded to two decimals.
func (m Money) Sub(o Money) Money {
	return Money{dec: m.dec.Sub(o.dec).Round(2)}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{dec: m.dec.Neg()}
}

// Percent returns pct% of m, rounded to two decimals. Used for commission:
// value.Percent(6.5) is 6.5% of value.
func (m Money) Percent(pct float64) (Money, error) {
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 {
		return Money{}, ErrInvalidAmount
	}
	rate := decimal.NewFromFloat(pct).Div(decimal.NewFromInt(100))
	return Money{dec: m.dec.Mul(rate).Round(2)}, nil
}

// PerUnit prices a weight in kg against this per-unit price, where one unit
// is UnitWeightKg: result = round2(weightKg / UnitWeightKg * m).
func (m Money) PerUnit(weightKg float64) (Money, error) {
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) || weightKg < 0 {
		return Money{}, ErrInvalidAmount
	}
	w := decimal.NewFromFloat(weightKg)
	units := w.Div(decimal.NewFromInt(UnitWeightKg))
	return Money{dec: m.dec.Mul(units).Round(2)}, nil
}

// Round reapplies two-decimal rounding. Round is idempotent:
// m.Round().Round() == m.Round() for every Money.
func (m Money) Round() Money {
	return Money{dec: m.dec.Round(2)}
}

func (m Money) IsZero() bool     { return m.dec.IsZero() }
func (m Money) IsNegative() bool { return m.dec.IsNegative() }
func (m Money) IsPositive() bool { return m.dec.IsPositive() }

// Cmp compares two amounts: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int { return m.dec.Cmp(o.dec) }

// Equal reports whether the two amounts are numerically equal.
func (m Money) Equal(o Money) bool { return m.dec.Equal(o.dec) }

// Abs returns the absolute value.
func (m Money) Abs() Money { return Money{dec: m.dec.Abs()} }

// String renders the amount with exactly two decimals, e.g. "1500.00".
func (m Money) String() string { return m.dec.StringFixed(2) }

// MarshalJSON renders Money as a quoted fixed-point string so that clients
// never see binary floating point.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.dec.StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts both "12.34" and 12.34 forms.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return fmt.Errorf("unmarshal money %q: %w", s, err)
	}
	*m = parsed
	return nil
}

// Validate rejects negative amounts. Use for prices and paid amounts, which
// must be non-negative.
func (m Money) Validate() error {
	if m.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
