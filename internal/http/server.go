// Package http provides the JSON API server for chat and health.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"hybridai/internal/health"
	"hybridai/internal/llm"
	. "hybridai/internal/logging"
	"hybridai/internal/metrics"
	"hybridai/internal/orchestrator"
)

// Generator is the surface the chat handler needs from the
// orchestrator.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) orchestrator.ChatResult
	Backends() []orchestrator.BackendInfo
	LastUsed() string
	Performance() map[string]time.Duration
}

// HealthChecker is the surface the health handler needs from the
// monitor.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	gen     Generator
	checker HealthChecker
	metrics *metrics.Manager
	started time.Time
	wg      sync.WaitGroup
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Listen string // Address to listen on (e.g., ":8080", "127.0.0.1:8080")

	// WriteTimeout bounds one response. Must exceed the worst-case
	// cascade, which can walk every backend's own timeout before the
	// canned reply goes out. The caller derives it from the backend
	// configs; zero gets a generous default.
	WriteTimeout time.Duration
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *ServerConfig, gen Generator, checker HealthChecker, m *metrics.Manager) *Server {
	listen := cfg.Listen
	if listen == "" {
		listen = ":8080"
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Minute
	}

	s := &Server{
		gen:     gen,
		checker: checker,
		metrics: m,
		started: time.Now(),
	}

	s.server = &http.Server{
		Addr:         listen,
		Handler:      s.setupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Apply middleware chain: logging -> strip headers
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return s.logRequest(s.stripHeaders(h))
	}

	mux.HandleFunc("/api/chat", wrap(s.handleChat))
	mux.HandleFunc("/api/health", wrap(s.handleHealth))
	mux.HandleFunc("/api/status", wrap(s.handleStatus))
	mux.HandleFunc("/api/metrics", wrap(s.handleMetrics))

	return mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		L_info("http: server starting", "addr", s.server.Addr)

		err := s.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			L_error("http: server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		L_error("http: shutdown error", "error", err)
		return err
	}

	s.wg.Wait()
	L_info("http: server stopped")
	return nil
}

// logRequest wraps an HTTP handler to log requests
func (s *Server) logRequest(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(lw, r)

		L_trace("http: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", lw.statusCode,
			"duration", time.Since(start))
	}
}

// loggingResponseWriter wraps ResponseWriter to capture status code
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lw *loggingResponseWriter) WriteHeader(code int) {
	lw.statusCode = code
	lw.ResponseWriter.WriteHeader(code)
}

// stripHeaders removes fingerprinting headers
func (s *Server) stripHeaders(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Del("Server")
		w.Header().Del("X-Powered-By")

		handler(w, r)
	}
}
