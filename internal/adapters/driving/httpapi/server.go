// Package httpapi exposes the service over HTTP: health and sanity
// probes, question answering and a manual ingestion trigger.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/askhub-ai/askhub/internal/core/ports/driving"
	"github.com/askhub-ai/askhub/internal/logger"
)

// Config holds the server settings.
type Config struct {
	AppName      string
	Addr         string
	AllowOrigins []string

	// EmbedModel and PineconeIndex are reported by the sanity probe.
	EmbedModel    string
	PineconeIndex string

	// Configured flags reported by the sanity probe.
	OpenAIConfigured   bool
	PineconeConfigured bool
	DriveConfigured    bool
}

// Server wires the driving services into an HTTP listener.
type Server struct {
	cfg      Config
	answerer driving.Answerer
	ingester driving.IngestRunner
	httpSrv  *http.Server
}

// NewServer builds the router and the underlying http.Server.
func NewServer(cfg Config, answerer driving.Answerer, ingester driving.IngestRunner) *Server {
	s := &Server{cfg: cfg, answerer: answerer, ingester: ingester}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/sanity", s.handleSanity)
	r.Post("/ask", s.handleAsk)
	r.Post("/ingest/run", s.handleIngestRun)

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start listens and serves until Shutdown. It returns nil after a
// clean shutdown.
func (s *Server) Start() error {
	logger.Info("http: listening on %s", s.cfg.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
