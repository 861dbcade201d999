package ratelimit

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moneytracker/internal/log"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *clock) {
	t.Helper()
	l := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(l.Stop)
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l.now = c.now
	return l, c
}

func TestAllowPerClient(t *testing.T) {
	l, _ := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("a") {
		t.Fatal("4th request should be rejected")
	}
	if !l.Allow("b") {
		t.Fatal("clients are counted separately")
	}
}

func TestWindowSlides(t *testing.T) {
	l, c := newTestLimiter(t, 2)

	l.Allow("a")
	c.advance(40 * time.Second)
	l.Allow("a")

	c.advance(10 * time.Second)
	if l.Allow("a") {
		t.Fatal("both requests are still within the last minute")
	}

	// first request is now 61s old
	c.advance(11 * time.Second)
	if !l.Allow("a") {
		t.Fatal("oldest request left the window, should be allowed")
	}
	if l.Allow("a") {
		t.Fatal("window is full again")
	}
}

func TestRejectedRequestsDoNotCount(t *testing.T) {
	l, c := newTestLimiter(t, 1)

	l.Allow("a")
	for i := 0; i < 5; i++ {
		c.advance(10 * time.Second)
		l.Allow("a")
	}
	c.advance(11 * time.Second)
	if !l.Allow("a") {
		t.Fatal("only the accepted request should hold the window")
	}
}

func TestSweepDropsIdleClients(t *testing.T) {
	l, c := newTestLimiter(t, 10)
	l.Allow("old")
	c.advance(2 * time.Minute)
	l.Allow("fresh")

	l.sweep()
	if got := l.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients() = %d, want 1", got)
	}
}

func TestMiddleware(t *testing.T) {
	l, c := newTestLimiter(t, 1)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := l.Middleware(func(*http.Request) string { return "ip" }, nil, http.MethodPost)(ok)

	tests := []struct {
		method     string
		after      time.Duration
		want       int
		retryAfter string
	}{
		{http.MethodPost, 0, http.StatusNoContent, ""},
		{http.MethodPost, 15 * time.Second, http.StatusTooManyRequests, "45"},
		{http.MethodGet, 0, http.StatusNoContent, ""},
		{http.MethodPost, 45 * time.Second, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		c.advance(tt.after)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/login", nil))
		if rec.Code != tt.want {
			t.Errorf("%s +%s: status = %d, want %d", tt.method, tt.after, rec.Code, tt.want)
		}
		if got := rec.Header().Get("Retry-After"); got != tt.retryAfter {
			t.Errorf("%s +%s: Retry-After = %q, want %q", tt.method, tt.after, got, tt.retryAfter)
		}
	}
}

func TestMiddlewareCustomHandler(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	called := 0
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		called++
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	h := l.Middleware(func(*http.Request) string { return "ip" }, onLimit)(http.NotFoundHandler())

	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if called != 2 || rec.Code != http.StatusServiceUnavailable {
		t.Errorf("onLimit called %d times, last status %d", called, rec.Code)
	}
}

func TestMiddlewareLogsRejection(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelInfo, Format: log.FormatText, Output: &buf})
	h := l.Middleware(func(*http.Request) string { return "198.51.100.4" }, nil)(http.NotFoundHandler())

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		h.ServeHTTP(httptest.NewRecorder(), r.WithContext(log.NewContext(r.Context(), logger)))
	}
	out := buf.String()
	for _, want := range []string{"component=" + log.ComponentRateLimit, "client_ip=198.51.100.4", "path=/login"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}
