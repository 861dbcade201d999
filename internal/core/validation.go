package core

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ValidationErrors maps a form field to a user-facing message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (v ValidationErrors) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v ValidationErrors) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// Err returns nil when there is nothing to report.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// merge copies every message from err into v when err is a ValidationErrors.
func (v ValidationErrors) merge(err error) {
	var other ValidationErrors
	if errors.As(err, &other) {
		for f, msg := range other {
			v.Add(f, msg)
		}
	}
}

// AsValidation extracts field messages from err.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// TransactionInput is the raw transaction form.
type TransactionInput struct {
	Title       string
	Amount      string
	Kind        string
	Category    string
	Description string
	Date        string
}

// ToTransaction parses the form into a Transaction and runs the structural
// checks. A blank date defaults to today. The category kind rule is not
// applied here because it needs the stored category; see CheckCategoryKind.
func (in TransactionInput) ToTransaction(today time.Time) (Transaction, error) {
	errs := ValidationErrors{}
	t := Transaction{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Kind:        Kind(strings.ToLower(strings.TrimSpace(in.Kind))),
	}

	if amount, err := ParseMoney(in.Amount); err != nil {
		errs.Add("amount", err.Error())
	} else {
		t.Amount = amount
	}

	if raw := strings.TrimSpace(in.Date); raw == "" {
		t.Date = DateOf(today)
	} else if d, ok := ParseDate(raw); ok {
		t.Date = d
	} else {
		errs.Add("date", "enter a valid date (YYYY-MM-DD)")
	}

	if raw := strings.TrimSpace(in.Category); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errs.Add("category", "select a valid category")
		} else {
			t.CategoryID = &id
		}
	}

	errs.merge(t.Validate())
	return t, errs.Err()
}

// CategoryInput is the raw category form.
type CategoryInput struct {
	Name        string
	Kind        string
	Description string
	Icon        string
}

func (in CategoryInput) ToCategory() (Category, error) {
	c := Category{
		Name:        strings.TrimSpace(in.Name),
		Kind:        Kind(strings.ToLower(strings.TrimSpace(in.Kind))),
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
		Active:      true,
	}
	return c, c.Validate()
}
