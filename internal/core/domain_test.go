package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in  string
		out Kind
		ok  bool
	}{
		{"income", KindIncome, true},
		{" Expense ", KindExpense, true},
		{"INCOME", KindIncome, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.out, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Title:  "Lunch sales",
		Amount: MoneyFromCents(12050),
		Kind:   KindIncome,
		Date:   date(2024, 1, 5),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		mut   func(*Transaction)
		field string
	}{
		{"empty title", func(tx *Transaction) { tx.Title = "  " }, "title"},
		{"long title", func(tx *Transaction) { tx.Title = strings.Repeat("x", MaxTitleLength+1) }, "title"},
		{"zero amount", func(tx *Transaction) { tx.Amount = Zero }, "amount"},
		{"negative amount", func(tx *Transaction) { tx.Amount = MoneyFromCents(-1) }, "amount"},
		{"bad kind", func(tx *Transaction) { tx.Kind = "transfer" }, "kind"},
		{"no date", func(tx *Transaction) { tx.Date = time.Time{} }, "date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mut(&tx)
			verrs, ok := AsValidation(tx.Validate())
			if !ok {
				t.Fatalf("expected validation errors")
			}
			if !verrs.Has(tc.field) {
				t.Fatalf("expected error on %q, got %v", tc.field, verrs)
			}
		})
	}
}

func TestNonPositiveAmountAlwaysFails(t *testing.T) {
	for _, cents := range []int64{0, -1, -100, -999999} {
		tx := Transaction{Title: "x", Amount: MoneyFromCents(cents), Kind: KindExpense, Date: date(2024, 1, 1)}
		verrs, ok := AsValidation(tx.Validate())
		if !ok || !verrs.Has("amount") {
			t.Fatalf("cents=%d expected amount error, got %v", cents, verrs)
		}
	}
}

func TestCheckCategoryKind(t *testing.T) {
	food := &Category{ID: 1, Name: "Food sales", Kind: KindIncome}

	if err := CheckCategoryKind(KindIncome, food); err != nil {
		t.Fatalf("matching kind should pass, got %v", err)
	}
	if err := CheckCategoryKind(KindExpense, nil); err != nil {
		t.Fatalf("no category should pass, got %v", err)
	}

	err := CheckCategoryKind(KindExpense, food)
	verrs, ok := AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !verrs.Has("category") || len(verrs) != 1 {
		t.Fatalf("expected a single category error, got %v", verrs)
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Gas", Kind: KindExpense, Icon: "bi-fire"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Category{
		{Name: "", Kind: KindExpense},
		{Name: strings.Repeat("n", MaxCategoryNameLength+1), Kind: KindExpense},
		{Name: "Gas", Kind: ""},
		{Name: "Gas", Kind: KindExpense, Icon: strings.Repeat("i", MaxIconLength+1)},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryInUseErrorMessage(t *testing.T) {
	err := &CategoryInUseError{Name: "Rent", Count: 3}
	if !strings.Contains(err.Error(), "3 transactions") {
		t.Fatalf("message should state the count, got %q", err.Error())
	}
	one := &CategoryInUseError{Name: "Rent", Count: 1}
	if !strings.Contains(one.Error(), "1 transaction") || strings.Contains(one.Error(), "transactions") {
		t.Fatalf("unexpected singular message %q", one.Error())
	}
}

func TestTransactionInputToTransaction(t *testing.T) {
	today := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)

	tx, err := TransactionInput{Title: " Rice ", Amount: "350,5", Kind: "expense", Category: "7"}.ToTransaction(today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Title != "Rice" || tx.Amount.Cents() != 35050 || tx.Kind != KindExpense {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if !tx.Date.Equal(date(2024, 3, 9)) {
		t.Fatalf("blank date should default to today, got %v", tx.Date)
	}
	if tx.CategoryID == nil || *tx.CategoryID != 7 {
		t.Fatalf("expected category 7, got %v", tx.CategoryID)
	}

	_, err = TransactionInput{Title: "", Amount: "0", Kind: "gift", Category: "x", Date: "2024-13-01"}.ToTransaction(today)
	verrs, ok := AsValidation(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	for _, f := range []string{"title", "amount", "kind", "category", "date"} {
		if !verrs.Has(f) {
			t.Errorf("expected error on %q, got %v", f, verrs)
		}
	}
}

func TestValidationErrorsMessageIsStable(t *testing.T) {
	v := ValidationErrors{"title": "title is required", "amount": "invalid amount"}
	want := "validation failed: amount: invalid amount; title: title is required"
	if v.Error() != want {
		t.Fatalf("got %q want %q", v.Error(), want)
	}
	if (ValidationErrors{}).Err() != nil {
		t.Fatalf("empty errors should be nil")
	}
}

func TestLengthLimitsCountCharacters(t *testing.T) {
	thai := func(n int) string { return strings.Repeat("ก", n) }
	tests := []struct {
		name  string
		err   error
		field string
		want  bool
	}{
		{"thai title under limit", Transaction{Title: thai(80), Amount: MoneyFromCents(100), Kind: KindExpense, Date: date(2024, 1, 1)}.Validate(), "title", false},
		{"thai title at limit", Transaction{Title: thai(MaxTitleLength), Amount: MoneyFromCents(100), Kind: KindExpense, Date: date(2024, 1, 1)}.Validate(), "title", false},
		{"thai title over limit", Transaction{Title: thai(MaxTitleLength + 1), Amount: MoneyFromCents(100), Kind: KindExpense, Date: date(2024, 1, 1)}.Validate(), "title", true},
		{"thai description at limit", Transaction{Title: "x", Description: thai(MaxDescriptionLength), Amount: MoneyFromCents(100), Kind: KindExpense, Date: date(2024, 1, 1)}.Validate(), "description", false},
		{"thai category name", Category{Name: thai(40), Kind: KindIncome}.Validate(), "name", false},
		{"thai category name at limit", Category{Name: thai(MaxCategoryNameLength), Kind: KindIncome}.Validate(), "name", false},
		{"thai category name over limit", Category{Name: thai(MaxCategoryNameLength + 1), Kind: KindIncome}.Validate(), "name", true},
		{"accented icon at limit", Category{Name: "Café", Kind: KindExpense, Icon: strings.Repeat("é", MaxIconLength)}.Validate(), "icon", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verrs, _ := AsValidation(tt.err)
			if got := verrs.Has(tt.field); got != tt.want {
				t.Errorf("error on %q = %v, want %v (%v)", tt.field, got, tt.want, tt.err)
			}
		})
	}
}
