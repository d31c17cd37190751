// Package server exposes the analysis engine and its stored runs over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/database"
	"github.com/ihelfrich/GermanCostCo/internal/storage"
)

// Config holds the server dependencies.
type Config struct {
	Log       zerolog.Logger
	Snapshot  config.Snapshot
	Repo      *storage.RunRepository
	ResultsDB *database.DB
	Port      int
	DevMode   bool
}

// Server is the HTTP API server.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	snapshot  config.Snapshot
	repo      *storage.RunRepository
	resultsDB *database.DB
	started   time.Time

	// runMu serializes manual run triggers; a second trigger while one
	// is in flight gets 409 instead of queueing.
	runMu sync.Mutex
}

// New creates the server and wires routes.
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		snapshot:  cfg.Snapshot,
		repo:      cfg.Repo,
		resultsDB: cfg.ResultsDB,
		started:   time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout; a full pipeline run on a large replication count can
	// take a while, so this stays generous.
	s.router.Use(middleware.Timeout(120 * time.Second))

	// CORS
	allowedOrigins := []string{"*"}
	if !devMode {
		allowedOrigins = []string{"http://localhost:*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.handleTriggerRun)
			r.Get("/", s.handleListRuns)
			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", s.handleGetRun)
				r.Get("/summary", s.handleGetSummaries)
				r.Get("/decision", s.handleGetDecisions)
				r.Get("/valuation", s.handleGetValuations)
				r.Get("/cities", s.handleGetCityScores)
				r.Get("/plan", s.handleGetCityPlan)
				r.Get("/insights", s.handleGetInsights)
				r.Get("/report", s.handleGetReport)
			})
		})

		r.Get("/system/status", s.handleSystemStatus)
		r.Get("/system/assumptions", s.handleGetAssumptions)
	})
}

// Start begins listening. It blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the handler tree, mostly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
