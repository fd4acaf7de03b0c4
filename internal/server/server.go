// package server contains the middleware & handlers of the task backend
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dumper/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows which path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const shutdownTimeout = 5 * time.Second

// Server is the task backend: it runs the configured command per stream request and
// serves the files it produces.
type Server struct {
	config shared.ServerConfig
	router *BasicRouter
	logger *log.Logger
}

// New wires the backend's routes and middleware for config.
func New(config shared.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	router := NewBasicRouter()
	router.Use(Logging(logger), RateLimit(config.RateLimit, config.Burst))
	router.Handle(http.MethodGet, "/stream", NewStreamHandler(config.Command, config.Args, logger))
	router.Handler(NewDownloadHandler(config.OutputDir, logger))

	return &Server{config: config, router: router, logger: logger}
}

// Handler returns the routed handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown failed", "err", err)
		}
	}()

	s.logger.Info("serving", "addr", srv.Addr, "output", s.config.OutputDir, "command", s.config.Command)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
