package security

import (
	"net/http"
	"strconv"
	"strings"
)

const cdnOrigin = "https://cdn.jsdelivr.net"

// Directive is one Content-Security-Policy entry.
type Directive struct {
	Name    string
	Sources []string
}

// CSP renders directives in order, separated by "; ".
func CSP(directives ...Directive) string {
	parts := make([]string, 0, len(directives))
	for _, d := range directives {
		parts = append(parts, strings.TrimSpace(d.Name+" "+strings.Join(d.Sources, " ")))
	}
	return strings.Join(parts, "; ")
}

type HeadersConfig struct {
	// Static is sent on every response; empty values are skipped.
	Static map[string]string

	// HSTSMaxAge in seconds; HSTS is only sent over TLS.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

// DefaultHeadersConfig lets the chart library and icon font load from the
// CDN and forbids framing.
func DefaultHeadersConfig() HeadersConfig {
	self := "'self'"
	return HeadersConfig{
		Static: map[string]string{
			"Content-Security-Policy": CSP(
				Directive{"default-src", []string{self}},
				Directive{"script-src", []string{self, cdnOrigin}},
				Directive{"style-src", []string{self, cdnOrigin}},
				Directive{"font-src", []string{self, cdnOrigin}},
				Directive{"img-src", []string{self, "data:"}},
				Directive{"connect-src", []string{self}},
				Directive{"object-src", []string{"'none'"}},
				Directive{"frame-ancestors", []string{"'none'"}},
				Directive{"base-uri", []string{self}},
				Directive{"form-action", []string{self}},
			),
			"X-Frame-Options":              "DENY",
			"X-Content-Type-Options":       "nosniff",
			"Referrer-Policy":              "strict-origin-when-cross-origin",
			"Permissions-Policy":           "geolocation=(), microphone=(), camera=(), payment=()",
			"Cross-Origin-Opener-Policy":   "same-origin",
			"Cross-Origin-Resource-Policy": "same-origin",
		},
		HSTSMaxAge:            365 * 24 * 60 * 60,
		HSTSIncludeSubdomains: true,
	}
}

type HeadersMiddleware struct {
	static http.Header
	hsts   string
}

// NewHeadersMiddleware canonicalises the configured headers once.
func NewHeadersMiddleware(cfg HeadersConfig) *HeadersMiddleware {
	m := &HeadersMiddleware{static: make(http.Header, len(cfg.Static))}
	for k, v := range cfg.Static {
		if v != "" {
			m.static.Set(k, v)
		}
	}
	if cfg.HSTSMaxAge > 0 {
		m.hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			m.hsts += "; includeSubDomains"
		}
	}
	return m
}

func (m *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range m.static {
			h[k] = v
		}
		if r.TLS != nil && m.hsts != "" {
			h.Set("Strict-Transport-Security", m.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware marks responses as publicly cacheable for maxAge
// seconds.
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	cacheControl := "public, max-age=" + strconv.Itoa(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", cacheControl)
			}
			next.ServeHTTP(w, r)
		})
	}
}
