// Package ratelimit throttles requests per client with a sliding one-minute
// window.
package ratelimit

import (
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
)

const window = time.Minute

// Limiter keeps the timestamps of each client's accepted requests inside
// the current window.
type Limiter struct {
	mu    sync.Mutex
	seen  map[string][]time.Time
	limit int
	now   func() time.Time

	sweepEvery time.Duration
	done       chan struct{}
	stopOnce   sync.Once
}

type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 60, CleanupInterval: 5 * time.Minute}
}

// NewLimiter starts a background sweep; Stop releases it.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	l := &Limiter{
		seen:       make(map[string][]time.Time),
		limit:      cfg.RequestsPerMinute,
		now:        time.Now,
		sweepEvery: cfg.CleanupInterval,
		done:       make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow records a request for key and reports whether it fits the window.
func (l *Limiter) Allow(key string) bool {
	ok, _ := l.take(key)
	return ok
}

// take returns, on rejection, how long until the oldest request leaves the
// window.
func (l *Limiter) take(key string) (bool, time.Duration) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	hits := trim(l.seen[key], now)
	if len(hits) >= l.limit {
		l.seen[key] = hits
		return false, hits[0].Add(window).Sub(now)
	}
	l.seen[key] = append(hits, now)
	return true, 0
}

// trim drops timestamps that fell out of the window ending at now.
func trim(hits []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-window)
	i, _ := slices.BinarySearchFunc(hits, cutoff, func(t, c time.Time) int {
		if t.After(c) {
			return 1
		}
		return -1
	})
	return hits[i:]
}

// ActiveClients counts keys that still have requests in the window.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

func (l *Limiter) sweep() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, hits := range l.seen {
		if hits = trim(hits, now); len(hits) == 0 {
			delete(l.seen, key)
		} else {
			l.seen[key] = hits
		}
	}
}

func (l *Limiter) sweepLoop() {
	t := time.NewTicker(l.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Middleware limits the listed methods (all methods when none are given).
// keyFn picks the client key; onLimit, when set, replaces the default 429.
func (l *Limiter) Middleware(keyFn func(*http.Request) string, onLimit http.HandlerFunc, methods ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(methods) > 0 && !slices.Contains(methods, r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			key := keyFn(r)
			ok, wait := l.take(key)
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			metrics.RateLimited()
			log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
				"Rate limit exceeded",
				log.FieldClientIP, key,
				log.FieldPath, r.URL.Path)
			secs := int(wait.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			http.Error(w, "Too many requests, slow down.", http.StatusTooManyRequests)
		})
	}
}
