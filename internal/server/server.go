// Package server implements the workflow persistence API served by
// `callflow serve`. It is the backend pkg/api speaks to during local
// development: the same routes, status codes, and JSON shapes the
// hosted persistence service exposes, over a pluggable pkg/store
// backend.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/voxhive/callflow/pkg/errors"
	"github.com/voxhive/callflow/pkg/observability"
	"github.com/voxhive/callflow/pkg/store"
)

// DefaultAddr is the listen address `callflow serve` binds without
// configuration. pkg/api's DefaultBaseURL points at it.
const DefaultAddr = ":8787"

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Addr is the listen address. Empty means DefaultAddr.
	Addr string

	// Store persists workflows. Required.
	Store store.Store

	// Metrics, when set, is served at /metrics. The serve command passes
	// the registry promhooks installed into.
	Metrics prometheus.Gatherer

	// Logger receives request logs. Nil means the default logger.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks required fields and fills in defaults.
// Safe to call multiple times.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Store == nil {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "server options: store is required")
	}
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	o.validated = true
	return nil
}

// Server is the dev persistence API.
type Server struct {
	opts Options
}

// New creates a server from opts.
func New(opts Options) (*Server, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Server{opts: opts}, nil
}

// Handler builds the route tree. Split from ListenAndServe so tests can
// drive the API through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(allowCORS)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/workflows", func(r chi.Router) {
			r.Get("/", s.handleListWorkflows)
			r.Post("/", s.handleCreateWorkflow)
			r.Get("/{id}", s.handleGetWorkflow)
			r.Put("/{id}", s.handleSaveWorkflow)
			r.Post("/{id}/validate", s.handleValidateWorkflow)
		})
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.opts.Logger.Info("persistence API listening", "addr", s.opts.Addr)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		// The route pattern keeps metric label cardinality bounded; raw
		// paths embed workflow ids.
		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, r.Host, path, ww.Status(), time.Since(start))

		s.opts.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// allowCORS lets browser-hosted editor surfaces talk to the local
// server from another origin.
func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
