// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals with two fractional digits. They are stored as
// integer cents and only converted to float64 for chart payloads.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount is the exclusive upper bound: ten digits, two of them decimals.
var maxAmount = decimal.New(1, 8)

type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{d: decimal.Zero}

func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// ExactMoney keeps every fractional digit of d, leaving Validate to reject
// values that are not whole cents.
func ExactMoney(d decimal.Decimal) Money {
	return Money{d: d}
}

// ParseMoney parses a user supplied amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. When both
// appear, commas are treated as thousands separators (1,234.50). More than two
// significant decimal places are rejected instead of being rounded. The sign
// is not checked here; see Money.Validate.
//
// Examples:
//
//	ParseMoney("12.34")    -> 12.34, nil
//	ParseMoney("12,34")    -> 12.34, nil
//	ParseMoney("1,234.50") -> 1234.50, nil
//	ParseMoney("12.345")   -> ErrAmountPrecision
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	if strings.ContainsAny(s, "eE") {
		return Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	if !d.Equal(d.Round(2)) {
		return Zero, ErrAmountPrecision
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return Zero, ErrAmountTooLarge
	}
	return Money{d: d.Round(2)}, nil
}

// Validate reports ErrInvalidAmount unless the amount is strictly positive,
// and ErrAmountPrecision when it is not a whole number of cents.
func (m Money) Validate() error {
	if !m.d.IsPositive() {
		return ErrInvalidAmount
	}
	if !m.d.Equal(m.d.Round(2)) {
		return ErrAmountPrecision
	}
	return nil
}

func (m Money) Cents() int64 {
	return m.d.Shift(2).Round(0).IntPart()
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

func (m Money) IsZero() bool { return m.d.IsZero() }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// Float64 is for chart payloads only. Never use it for arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// String returns the plain two-decimal representation, e.g. "1234.50".
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// Format returns the amount with thousands separators, e.g. "1,234.50".
func (m Money) Format() string {
	s := m.d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if m.d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
