// Package report computes dashboard and report figures over a user's
// transactions.
package report

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"moneytracker/internal/core"
)

// Preset names a date window relative to today.
type Preset string

const (
	PresetToday     Preset = "today"
	PresetThisMonth Preset = "this_month"
	PresetThisYear  Preset = "this_year"
	PresetAll       Preset = "all"
)

// Presets lists the selectable presets in display order.
func Presets() []Preset {
	return []Preset{PresetToday, PresetThisMonth, PresetThisYear, PresetAll}
}

func (p Preset) Label() string {
	switch p {
	case PresetToday:
		return "Today"
	case PresetThisMonth:
		return "This month"
	case PresetThisYear:
		return "This year"
	case PresetAll:
		return "All time"
	}
	return string(p)
}

// ParsePreset returns def for empty or unknown values.
func ParsePreset(s string, def Preset) Preset {
	switch p := Preset(strings.TrimSpace(s)); p {
	case PresetToday, PresetThisMonth, PresetThisYear, PresetAll:
		return p
	}
	return def
}

// Criteria is the filter behind the transaction list and the reports page.
// Every field is optional.
type Criteria struct {
	Preset     Preset
	DateFrom   *time.Time
	DateTo     *time.Time
	Kind       *core.Kind
	CategoryID *int64
}

// ParseCriteria reads preset, date_from, date_to, type and category from a
// query string. Malformed values are dropped, never reported.
func ParseCriteria(q url.Values, defaultPreset Preset) Criteria {
	c := Criteria{Preset: ParsePreset(q.Get("preset"), defaultPreset)}

	if d, ok := core.ParseDate(q.Get("date_from")); ok {
		c.DateFrom = &d
	}
	if d, ok := core.ParseDate(q.Get("date_to")); ok {
		c.DateTo = &d
	}
	if k, err := core.ParseKind(q.Get("type")); err == nil {
		c.Kind = &k
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(q.Get("category")), 10, 64); err == nil && id > 0 {
		c.CategoryID = &id
	}
	return c
}

// Period resolves the inclusive date window. The preset supplies defaults
// and each explicit bound overrides its side. A nil bound is open.
func (c Criteria) Period(today time.Time) (start, end *time.Time) {
	today = core.DateOf(today)
	switch c.Preset {
	case PresetToday:
		start, end = ptr(today), ptr(today)
	case PresetThisMonth:
		start, end = ptr(core.MonthStart(today)), ptr(today)
	case PresetThisYear:
		start, end = ptr(core.YearStart(today)), ptr(today)
	}
	if c.DateFrom != nil {
		start = ptr(core.DateOf(*c.DateFrom))
	}
	if c.DateTo != nil {
		end = ptr(core.DateOf(*c.DateTo))
	}
	return start, end
}

// Filter turns the criteria into a storage filter for the given day.
func (c Criteria) Filter(today time.Time) core.TransactionFilter {
	start, end := c.Period(today)
	return core.TransactionFilter{
		Kind:       c.Kind,
		CategoryID: c.CategoryID,
		From:       start,
		To:         end,
	}
}

// Query encodes the criteria back into query parameters, for links that keep
// the current filter.
func (c Criteria) Query() url.Values {
	q := url.Values{}
	if c.Preset != "" {
		q.Set("preset", string(c.Preset))
	}
	if c.DateFrom != nil {
		q.Set("date_from", core.FormatDate(*c.DateFrom))
	}
	if c.DateTo != nil {
		q.Set("date_to", core.FormatDate(*c.DateTo))
	}
	if c.Kind != nil {
		q.Set("type", string(*c.Kind))
	}
	if c.CategoryID != nil {
		q.Set("category", strconv.FormatInt(*c.CategoryID, 10))
	}
	return q
}

func ptr[T any](v T) *T { return &v }
