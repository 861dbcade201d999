package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseMoneyCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1,234.50", 123450, true},
		{" 2.50 ", 250, true},
		{"1.500", 150, true}, // trailing zeros are not extra precision
		{"1.005", 0, false},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"100000000", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		m, err := ParseMoney(tc.in)
		if err == nil {
			err = m.Validate()
		}
		got := m.Cents()
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseMoneyErrors(t *testing.T) {
	if _, err := ParseMoney("12.345"); !errors.Is(err, ErrAmountPrecision) {
		t.Fatalf("expected ErrAmountPrecision, got %v", err)
	}
	if _, err := ParseMoney("99999999.99"); err != nil {
		t.Fatalf("largest amount should parse, got %v", err)
	}
	if _, err := ParseMoney("100000000.00"); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
	// Sign is left to Validate.
	m, err := ParseMoney("-5")
	if err != nil || m.Validate() == nil {
		t.Fatalf("negative should parse then fail validation, got %v / %v", err, m.Validate())
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	sum := Zero
	for i := 0; i < 10; i++ {
		sum = sum.Add(MoneyFromCents(10)) // 0.10
	}
	if !sum.Equal(MoneyFromCents(100)) {
		t.Fatalf("expected 1.00, got %s", sum)
	}
	if got := MoneyFromCents(100000).Sub(MoneyFromCents(40000)); got.String() != "600.00" {
		t.Fatalf("expected 600.00, got %s", got)
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := map[int64]string{
		0:          "0.00",
		5:          "0.05",
		123450:     "1,234.50",
		100000000:  "1,000,000.00",
		-123450:    "-1,234.50",
		9999999999: "99,999,999.99",
	}
	for cents, want := range cases {
		if got := MoneyFromCents(cents).Format(); got != want {
			t.Errorf("%d: got %q want %q", cents, got, want)
		}
	}
}

func TestMonthHelpers(t *testing.T) {
	ref := time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC)
	if got := MonthStart(ref); !got.Equal(date(2024, 3, 1)) {
		t.Fatalf("MonthStart: %v", got)
	}
	// Calendar stepping never skips February.
	if got := AddMonths(MonthStart(ref), -1); !got.Equal(date(2024, 2, 1)) {
		t.Fatalf("AddMonths(-1): %v", got)
	}
	if got := AddMonths(date(2024, 1, 1), -1); !got.Equal(date(2023, 12, 1)) {
		t.Fatalf("AddMonths across year: %v", got)
	}
	if got := MonthLabel(date(2024, 1, 1)); got != "Jan 2024" {
		t.Fatalf("MonthLabel: %q", got)
	}
	if _, ok := ParseDate("2024-02-30"); ok {
		t.Fatalf("invalid calendar date should not parse")
	}
	if d, ok := ParseDate("2024-02-29"); !ok || !d.Equal(date(2024, 2, 29)) {
		t.Fatalf("leap day should parse, got %v %v", d, ok)
	}
}

func TestExactMoneyValidate(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"25.50", nil},
		{"25.50000000", nil},
		{"25.505", ErrAmountPrecision},
		{"0.001", ErrAmountPrecision},
		{"0", ErrInvalidAmount},
		{"-3", ErrInvalidAmount},
	}
	for _, tt := range tests {
		m := ExactMoney(decimal.RequireFromString(tt.in))
		if err := m.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("ExactMoney(%s).Validate() = %v, want %v", tt.in, err, tt.want)
		}
	}
	if got := MoneyFromDecimal(decimal.RequireFromString("25.505")).Validate(); got != nil {
		t.Errorf("rounded constructor should always validate, got %v", got)
	}
}
