// Package server provides the HTTP front door for the deck generator.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonkmatsumo/deck-forge/internal/pipeline"
)

// Server wraps the HTTP surface around the pipeline runner.
type Server struct {
	httpServer *http.Server
	runner     *pipeline.Runner
	log        *zap.Logger
}

// New creates a server listening on the given port.
func New(port int, runner *pipeline.Runner, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{runner: runner, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /presentations", s.handleGenerate)
	mux.HandleFunc("GET /presentations/{id}", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
