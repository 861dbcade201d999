package report

import (
	"net/url"
	"testing"
	"time"

	"moneytracker/internal/core"
)

func TestParsePreset(t *testing.T) {
	cases := []struct {
		in   string
		def  Preset
		want Preset
	}{
		{"today", PresetThisMonth, PresetToday},
		{"this_year", PresetThisMonth, PresetThisYear},
		{"", PresetThisMonth, PresetThisMonth},
		{"last_decade", PresetThisMonth, PresetThisMonth},
		{"", PresetAll, PresetAll},
	}
	for _, tc := range cases {
		if got := ParsePreset(tc.in, tc.def); got != tc.want {
			t.Errorf("ParsePreset(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCriteriaPeriod(t *testing.T) {
	today := day(2024, 5, 17)
	from := day(2024, 5, 3)
	to := day(2024, 5, 9)

	cases := []struct {
		name      string
		c         Criteria
		wantStart string
		wantEnd   string
	}{
		{"today", Criteria{Preset: PresetToday}, "2024-05-17", "2024-05-17"},
		{"this month", Criteria{Preset: PresetThisMonth}, "2024-05-01", "2024-05-17"},
		{"this year", Criteria{Preset: PresetThisYear}, "2024-01-01", "2024-05-17"},
		{"all", Criteria{Preset: PresetAll}, "", ""},
		{"explicit overrides preset", Criteria{Preset: PresetThisYear, DateFrom: &from, DateTo: &to}, "2024-05-03", "2024-05-09"},
		{"only end overridden", Criteria{Preset: PresetThisMonth, DateTo: &to}, "2024-05-01", "2024-05-09"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := tc.c.Period(today)
			if got := fmtPtr(start); got != tc.wantStart {
				t.Errorf("start = %q, want %q", got, tc.wantStart)
			}
			if got := fmtPtr(end); got != tc.wantEnd {
				t.Errorf("end = %q, want %q", got, tc.wantEnd)
			}
		})
	}
}

func TestParseCriteriaIgnoresMalformedInput(t *testing.T) {
	q := url.Values{
		"preset":    {"this_year"},
		"date_from": {"2024-02-30"},
		"date_to":   {"yesterday"},
		"type":      {"transfer"},
		"category":  {"abc"},
	}
	c := ParseCriteria(q, PresetThisMonth)
	if c.Preset != PresetThisYear {
		t.Fatalf("preset = %q", c.Preset)
	}
	if c.DateFrom != nil || c.DateTo != nil || c.Kind != nil || c.CategoryID != nil {
		t.Fatalf("malformed values should be dropped, got %+v", c)
	}

	start, end := c.Period(day(2024, 5, 17))
	if fmtPtr(start) != "2024-01-01" || fmtPtr(end) != "2024-05-17" {
		t.Fatalf("expected preset fallback, got %s..%s", fmtPtr(start), fmtPtr(end))
	}
}

func TestParseCriteriaRoundTrip(t *testing.T) {
	q := url.Values{
		"preset":    {"today"},
		"date_from": {"2024-01-01"},
		"date_to":   {"2024-01-31"},
		"type":      {"expense"},
		"category":  {"12"},
	}
	c := ParseCriteria(q, PresetAll)
	if c.Kind == nil || *c.Kind != core.KindExpense {
		t.Fatalf("kind not parsed: %+v", c.Kind)
	}
	if c.CategoryID == nil || *c.CategoryID != 12 {
		t.Fatalf("category not parsed: %+v", c.CategoryID)
	}
	if got := c.Query().Encode(); got != q.Encode() {
		t.Fatalf("Query() = %q, want %q", got, q.Encode())
	}

	f := c.Filter(day(2024, 5, 17))
	if fmtPtr(f.From) != "2024-01-01" || fmtPtr(f.To) != "2024-01-31" || f.Kind == nil || f.CategoryID == nil {
		t.Fatalf("unexpected filter %+v", f)
	}
}

func fmtPtr(d *time.Time) string {
	if d == nil {
		return ""
	}
	return core.FormatDate(*d)
}
