package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"moneytracker/internal/auth"
	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
	"moneytracker/internal/middleware/ratelimit"
	"moneytracker/internal/middleware/security"
	"moneytracker/internal/middleware/trace"
	"moneytracker/internal/report"
	"moneytracker/internal/services"
	appweb "moneytracker/web"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the handlers call into.
type Dependencies struct {
	Store        Pinger
	Users        *auth.PasswordAuthenticator
	Sessions     *auth.SessionManager
	Transactions *services.TransactionService
	Categories   *services.CategoryService
	Reports      *report.Aggregator
}

type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
}

type Server struct {
	*http.Server

	deps      Dependencies
	logger    *log.Logger
	templates map[string]*template.Template
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	started   time.Time
	now       func() time.Time

	shutdownOnce sync.Once
}

// pages lists every template rendered through the shared layout.
var pages = []string{
	"login.html",
	"register.html",
	"dashboard.html",
	"transactions.html",
	"transaction_form.html",
	"transaction_delete.html",
	"reports.html",
	"categories.html",
	"category_delete.html",
	"error.html",
}

func NewServer(addr string, deps Dependencies, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	templates, err := parseTemplates(appweb.Templates())
	if err != nil {
		return nil, err
	}

	limiterCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		deps:      deps,
		logger:    logger.WithComponent(log.ComponentHTTP),
		templates: templates,
		limiter:   ratelimit.NewLimiter(limiterCfg),
		detector:  security.NewDetector(),
		started:   time.Now(),
		now:       time.Now,
	}

	s.Server = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", security.StaticAssetMiddleware(86400)(
		http.StripPrefix("/static/", http.FileServer(http.FS(appweb.Static())))))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /logout", s.handleLogout)

	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth.RequireUser(h))
	}
	protected("GET /{$}", s.handleDashboard)
	protected("GET /transactions", s.handleTransactions)
	protected("GET /transactions/add", s.handleAddTransactionForm)
	protected("POST /transactions/add", s.handleAddTransaction)
	protected("GET /transactions/{id}/edit", s.handleEditTransactionForm)
	protected("POST /transactions/{id}/edit", s.handleEditTransaction)
	protected("GET /transactions/{id}/delete", s.handleDeleteTransactionForm)
	protected("POST /transactions/{id}/delete", s.handleDeleteTransaction)
	protected("GET /reports", s.handleReports)
	protected("GET /categories", s.handleCategories)
	protected("POST /categories", s.handleCreateCategory)
	protected("POST /categories/{id}/toggle", s.handleToggleCategory)
	protected("GET /categories/{id}/delete", s.handleDeleteCategoryForm)
	protected("POST /categories/{id}/delete", s.handleDeleteCategory)

	var h http.Handler = mux
	h = s.deps.Sessions.Middleware(h)
	h = s.limiter.Middleware(s.detector.ExtractClientIP, nil, http.MethodPost)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP).Middleware(h)
	return h
}

// Shutdown stops the rate limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	base, err := template.New("layout.html").Funcs(templateFuncs()).ParseFS(fsys, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	parsed := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		parsed[name] = t
	}
	return parsed, nil
}

// render executes a page into a buffer first so a template failure never
// leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := s.templates[name]
	if !ok {
		s.serverError(w, r, log.OpRender, fmt.Errorf("unknown template %q", name))
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(),
			"Template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender,
			"template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// serverError logs err and renders the generic error page.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
		"Request failed", err, log.ComponentHTTP, op, nil)
	s.errorPage(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.errorPage(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

func (s *Server) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	if _, ok := s.templates["error.html"]; !ok {
		ErrorResponse(status, message).Write(w, r)
		return
	}
	s.render(w, r, status, "error.html", errorPage{
		Page:    s.newPage(w, r, http.StatusText(status), ""),
		Status:  status,
		Message: message,
	})
}

// failure maps a service error to a response: not found, or a logged 500.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, core.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	s.serverError(w, r, op, err)
}

func (s *Server) today() time.Time {
	return s.now()
}
