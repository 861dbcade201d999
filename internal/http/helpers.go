package http

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/auth"
	"moneytracker/internal/core"
	"moneytracker/internal/report"
)

// Page is the data every template receives through the layout.
type Page struct {
	Title  string
	Nav    string
	User   *auth.User
	Flash  *Flash
	Notice string
}

func (s *Server) newPage(w http.ResponseWriter, r *http.Request, title, nav string) Page {
	p := Page{Title: title, Nav: nav, Flash: takeFlash(w, r)}
	if u, ok := auth.UserFromContext(r.Context()); ok {
		p.User = &u
	}
	return p
}

type errorPage struct {
	Page
	Status  int
	Message string
}

// currentUserID is only called behind auth.RequireUser.
func currentUserID(r *http.Request) string {
	u, _ := auth.UserFromContext(r.Context())
	return u.ID
}

// pathID reads a positive integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// safeNext accepts only local absolute paths as a post-login target.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(m core.Money) string { return m.Format() },
		"date":  func(t time.Time) string { return t.Format("Jan 2, 2006") },
		"isoDate": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return core.FormatDate(*t)
		},
		"month":   core.MonthLabel,
		"percent": func(d decimal.Decimal) string { return d.StringFixed(2) + "%" },
		"kinds":   core.Kinds,
		"presets": report.Presets,
		"isKind": func(k *core.Kind, want core.Kind) bool {
			return k != nil && *k == want
		},
		"isID": func(id *int64, want int64) bool {
			return id != nil && *id == want
		},
		"dict": dict,
		// withPreset links to the same filter under another preset, dropping
		// explicit dates.
		"withPreset": func(c report.Criteria, p report.Preset) string {
			q := c.Query()
			q.Set("preset", string(p))
			q.Del("date_from")
			q.Del("date_to")
			return "?" + q.Encode()
		},
	}
}

// dict builds a map from key/value pairs so partials can take named
// arguments.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
