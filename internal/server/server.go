// Package server exposes the decomposition pipeline over HTTP.
//
// Every POST to /v1/decompositions runs parse, decompose and verify on the
// submitted hypergraph and records the outcome as a [store.Run]. Stored
// runs can be fetched, listed, deleted and drawn.
//
// Routes:
//
//	POST   /v1/decompositions
//	GET    /v1/decompositions
//	GET    /v1/decompositions/{id}
//	DELETE /v1/decompositions/{id}
//	GET    /v1/decompositions/{id}/{format}
//	GET    /healthz
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/htdecomp/pkg/observability"
	"github.com/matzehuels/htdecomp/pkg/pipeline"
	"github.com/matzehuels/htdecomp/pkg/store"
)

// Defaults for Config fields left zero.
const (
	DefaultTimeout      = 2 * time.Minute
	DefaultMaxBodyBytes = 4 << 20
	DefaultListLimit    = 50
)

// Config tunes request handling.
type Config struct {
	// Timeout bounds a single decomposition.
	Timeout time.Duration
	// MaxBodyBytes bounds the request body of a submission.
	MaxBodyBytes int64
	// Defaults supplies decomposition options a request leaves unset.
	Defaults pipeline.Options
}

// Server handles API requests.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
	hooks  observability.HTTPHooks
	cfg    Config
}

// New creates a server. A nil logger discards output.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		runner: runner,
		store:  st,
		logger: logger,
		hooks:  observability.HTTP(),
		cfg:    cfg,
	}
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/v1/decompositions", func(r chi.Router) {
		r.Post("/", s.createRun)
		r.Get("/", s.listRuns)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getRun)
			r.Delete("/", s.deleteRun)
			r.Get("/{format}", s.renderRun)
		})
	})
	return r
}

// observe reports every request to the HTTP hooks and the access log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		s.hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, d)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", d)
	})
}
