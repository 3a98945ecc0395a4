package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"finboard/internal/charts"
	"finboard/internal/core"
	"finboard/internal/dashboard"
	applog "finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/ports"
	appweb "finboard/web"
)

// Server renders the dashboard pages and forwards mutations to the
// dashboard controller.
type Server struct {
	http.Server

	controller *dashboard.Controller
	categories ports.CategoryReader
	views      *pageViews
	board      *charts.Board
	templates  *template.Template
	limiter    *ratelimit.Limiter
	tracer     *trace.Middleware
	logger     *applog.Logger

	// mutate serializes form handling so the alert and draft read back
	// belong to the request that produced them.
	mutate sync.Mutex
}

// Options tunes a Server. Zero values use defaults.
type Options struct {
	Logger            *applog.Logger
	RequestsPerMinute int
	ReadyTimeout      time.Duration
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, cats ports.CategoryReader, store ports.TransactionStore, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 2 * time.Second
	}

	views := &pageViews{}
	board := charts.NewBoard()
	controller, err := dashboard.New(cats, store, views.bindings(board), logger)
	if err != nil {
		return nil, err
	}

	t, err := template.New("pages").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	limiterCfg := ratelimit.DefaultConfig()
	if opts.RequestsPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RequestsPerMinute
	}

	mux := http.NewServeMux()
	s := &Server{
		controller: controller,
		categories: cats,
		views:      views,
		board:      board,
		templates:  t,
		limiter:    ratelimit.NewLimiter(limiterCfg),
		tracer:     trace.NewMiddleware(logger),
		logger:     logger.WithComponent(applog.ComponentHTTP),
	}

	// Static assets (served from embedded FS)
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /analytics", s.handleAnalytics)
	mux.HandleFunc("GET /predictions", s.handlePredictions)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /transactions/delete", s.handleDeleteTransaction)
	mux.HandleFunc("DELETE /transactions", s.handleDeleteTransaction)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.readyHandler(opts.ReadyTimeout))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(trace.ClientIP, ratelimit.TransactionMutations)
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(limited(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Controller exposes the dashboard driven by this server.
func (s *Server) Controller() *dashboard.Controller { return s.controller }

// Shutdown stops the rate limiter and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

var templateFuncs = template.FuncMap{
	"rupees": core.FormatRupees,
}

// handleStats reports request counters, rate limiter state and whether
// charts are on screen.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_requests":     m.TotalRequests,
		"server_errors":      m.ServerErrors,
		"rate_limited":       s.limiter.Rejected(),
		"rate_limit_clients": s.limiter.ActiveClients(),
		"chart_mounts":       s.board.Mounts(),
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyHandler reports ready once the backend answers a category listing.
func (s *Server) readyHandler(timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if _, err := s.categories.ListCategories(ctx); err != nil {
			requestLogger(r).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
