package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

type (
	// Kind distinguishes income from expense on both categories and transactions.
	Kind string

	User struct {
		ID           string
		Username     string
		PasswordHash string
		CreatedAt    time.Time
	}

	Category struct {
		ID          int64
		Name        string
		Kind        Kind
		Description string
		Icon        string // bootstrap icon name, e.g. "bi-basket"
		Active      bool
		CreatedAt   time.Time
	}

	Transaction struct {
		ID          int64
		UserID      string
		Title       string
		Amount      Money
		Kind        Kind
		CategoryID  *int64
		Category    *Category // populated on reads
		Description string
		Date        time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

const (
	MaxTitleLength        = 200
	MaxCategoryNameLength = 100
	MaxIconLength         = 50
	MaxDescriptionLength  = 1000
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCategory = errors.New("a category with this name and type already exists")
	ErrUsernameTaken     = errors.New("username is already taken")
	ErrInvalidKind       = errors.New("invalid type: must be income or expense")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAmountPrecision   = errors.New("amount must have at most 2 decimal places")
	ErrAmountTooLarge    = errors.New("amount is too large")
)

// CategoryInUseError is returned when a category still has transactions
// pointing at it.
type CategoryInUseError struct {
	Name  string
	Count int64
}

func (e *CategoryInUseError) Error() string {
	noun := "transactions"
	if e.Count == 1 {
		noun = "transaction"
	}
	return fmt.Sprintf("cannot delete category %q: it is used by %d %s", e.Name, e.Count, noun)
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Label is the display name used in templates.
func (k Kind) Label() string {
	switch k {
	case KindIncome:
		return "Income"
	case KindExpense:
		return "Expense"
	}
	return string(k)
}

func (k Kind) String() string { return string(k) }

// Kinds lists every kind in display order.
func Kinds() []Kind {
	return []Kind{KindIncome, KindExpense}
}

// tooLong compares characters, not bytes.
func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

// Validate checks the shape of a category. Categories are created on their
// own, so there is no cross-check against transactions here.
func (c Category) Validate() error {
	errs := ValidationErrors{}
	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		errs.Add("name", "name is required")
	case tooLong(name, MaxCategoryNameLength):
		errs.Add("name", fmt.Sprintf("name too long (max %d characters)", MaxCategoryNameLength))
	}
	if !c.Kind.Valid() {
		errs.Add("kind", ErrInvalidKind.Error())
	}
	if tooLong(c.Icon, MaxIconLength) {
		errs.Add("icon", fmt.Sprintf("icon too long (max %d characters)", MaxIconLength))
	}
	if tooLong(c.Description, MaxDescriptionLength) {
		errs.Add("description", fmt.Sprintf("description too long (max %d characters)", MaxDescriptionLength))
	}
	return errs.Err()
}

// Validate runs the structural checks on a transaction: required fields,
// lengths and a strictly positive amount.
func (t Transaction) Validate() error {
	errs := ValidationErrors{}
	title := strings.TrimSpace(t.Title)
	switch {
	case title == "":
		errs.Add("title", "title is required")
	case tooLong(title, MaxTitleLength):
		errs.Add("title", fmt.Sprintf("title too long (max %d characters)", MaxTitleLength))
	}
	if err := t.Amount.Validate(); err != nil {
		errs.Add("amount", err.Error())
	}
	if !t.Kind.Valid() {
		errs.Add("kind", ErrInvalidKind.Error())
	}
	if t.Date.IsZero() {
		errs.Add("date", "date is required")
	}
	if tooLong(t.Description, MaxDescriptionLength) {
		errs.Add("description", fmt.Sprintf("description too long (max %d characters)", MaxDescriptionLength))
	}
	return errs.Err()
}

// CheckCategoryKind is the business rule applied after structural
// validation: a categorised transaction must share its category's kind.
func CheckCategoryKind(kind Kind, category *Category) error {
	if category == nil {
		return nil
	}
	if category.Kind != kind {
		return ValidationErrors{
			"category": fmt.Sprintf("category %q is for %s, not %s",
				category.Name, strings.ToLower(category.Kind.Label()), strings.ToLower(kind.Label())),
		}
	}
	return nil
}
