package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money stores an amount in minor units (cents). It is persisted as a JSON
// number in major units so stored documents keep the shape "amount": 28302.5.
type Money struct {
	Cents int64
}

// ParseAmount converts a user supplied amount to Money.
//
// Both dot (12.34) and comma (12,34) separators are accepted. The value is
// rounded half away from zero to two decimals. Negative and zero amounts are
// rejected with ErrInvalidAmount.
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,345") -> 1235
func ParseAmount(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	m := FromDecimal(d)
	if !m.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// FromDecimal rounds a major-unit decimal to cents.
func FromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// FromUnits builds Money from a whole number of major units.
func FromUnits(units int64) Money {
	return Money{Cents: units * 100}
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents} }
func (m Money) Mul(n int64) Money { return Money{Cents: m.Cents * n} }

func (m Money) IsPositive() bool { return m.Cents > 0 }
func (m Money) IsZero() bool     { return m.Cents == 0 }

// String formats with two decimals, e.g. "1234.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(strings.Trim(string(b), `"`))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, err)
	}
	*m = FromDecimal(d)
	return nil
}
