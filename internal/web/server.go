// Package web provides the HTTP server and handlers for the data grid, the
// personal info records and the components gallery.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/techbeat/internal/config"
	"github.com/JonMunkholm/techbeat/internal/core"
	"github.com/JonMunkholm/techbeat/internal/forms"
	"github.com/JonMunkholm/techbeat/internal/metrics"
	"github.com/JonMunkholm/techbeat/internal/web/middleware"
)

// DefaultFormDelay simulates the gallery form's network round trip.
const DefaultFormDelay = time.Second

// Server is the HTTP server for the grid application.
type Server struct {
	service   *core.Service
	cfg       *config.Config
	router    *chi.Mux
	server    *http.Server
	limiters  []*rateLimiter
	formDelay time.Duration
	metrics   *metrics.Metrics
	records   *forms.Records
}

// Option customizes a Server.
type Option func(*Server)

// WithFormDelay overrides the simulated gallery submit latency.
func WithFormDelay(d time.Duration) Option {
	return func(s *Server) { s.formDelay = d }
}

// WithMetrics records exports and form submissions on m and serves it at
// the configured metrics path.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service:   service,
		cfg:       cfg,
		router:    chi.NewRouter(),
		formDelay: DefaultFormDelay,
		records:   forms.NewRecords(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics.GaugeFunc("personal_records", "Number of stored personal info records",
		func() float64 { return float64(s.records.Len()) })
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter(s.cfg.Rate.RequestsPerMinute).middleware)
	}
}

func (s *Server) newLimiter(perMinute int) *rateLimiter {
	rl := newRateLimiter(perMinute)
	s.limiters = append(s.limiters, rl)
	return rl
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleIndex)
	s.router.Get("/grid", s.handleNewGridPage)
	s.router.With(s.viewCtx).Get("/grid/{viewID}", s.handleGridPage)
	s.router.Get("/gallery", s.handleGalleryPage)
	s.router.Get("/records", s.handleRecordsPage)

	exportLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled && s.cfg.Rate.ExportLimit > 0 {
		exportLimit = s.newLimiter(s.cfg.Rate.ExportLimit).middleware
	}

	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(&s.cfg.Security))

			r.Post("/forms/gallery", s.handleGallerySubmit)

			r.Route("/records", func(r chi.Router) {
				r.Get("/", s.handleListRecords)
				r.Post("/", s.handleSubmitRecord)
				r.Get("/{index}", s.handleGetRecord)
				r.Delete("/{index}", s.handleDeleteRecord)
			})

			r.Post("/grids", s.handleCreateGrid)
			r.Route("/grids/{viewID}", func(r chi.Router) {
				r.Use(s.viewCtx)

				r.Get("/", s.handleGetGrid)
				r.Delete("/", s.handleDeleteGrid)

				r.Put("/query", s.handleSetQuery)
				r.Post("/sort/{field}", s.handleSort)
				r.Post("/page/{page}", s.handleGoToPage)
				r.Post("/next", s.handleNextPage)
				r.Post("/prev", s.handlePrevPage)

				r.Post("/rows/{rowID}/select", s.handleToggleRow)
				r.Post("/select-page", s.handleSelectPage)
				r.Delete("/rows/{rowID}", s.handleDeleteRow)

				r.Post("/edit", s.handleBeginEdit)
				r.Put("/edit", s.handleEditInput)
				r.Post("/edit/commit", s.handleCommitEdit)
				r.Post("/edit/blur", s.handleBlurEdit)

				r.With(exportLimit).Get("/export", s.handleExport)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// cspPolicy allows the htmx script from unpkg and inline styles.
const cspPolicy = "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'"

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", cspPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
