// Package server implements the HTTP server that exposes the document
// question-answering API: uploads, document management, and /api/ask.
// The server is started by the `docqa serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docuseek/docqa-go/internal/logging"
	"github.com/docuseek/docqa-go/internal/rag"
	"github.com/docuseek/docqa-go/internal/store"
)

// defaultMaxUploadBytes caps one upload request at 32 MiB.
const defaultMaxUploadBytes = 32 << 20

// New constructs a Server from the provided pipeline, QA service, stores,
// and config.
func New(pipeline ingestor, qaSvc asker, docs store.DocumentStore, index rag.VectorStore, cfg *Config) (*Server, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("server: ingestion pipeline must not be nil")
	}
	if qaSvc == nil {
		return nil, fmt.Errorf("server: qa service must not be nil")
	}
	if docs == nil {
		return nil, fmt.Errorf("server: document store must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("server: vector index must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover a full model round-trip on /api/ask.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		pipeline: pipeline,
		qa:       qaSvc,
		docs:     docs,
		index:    index,
		cfg:      cfg,
		log:      cfg.Logger,
		pingers:  cfg.Pingers,
		metrics:  newServerMetrics(reg),
	}

	if cfg.APIKey == "" {
		s.log.Warn("server: DOCQA_API_KEY not set — API authentication is disabled")
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, s.log)
	s.stopRL = stopRL

	// protected routes require the Bearer token and count against the
	// per-IP rate limit; health, readiness, and metrics stay open.
	protected := func(name string, h http.HandlerFunc) http.Handler {
		return authMiddleware(cfg.APIKey, rl.middleware(s.instrument(name, h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/documents", protected("upload", s.handleUpload))
	mux.Handle("GET /api/documents", protected("list_documents", s.handleListDocuments))
	mux.Handle("DELETE /api/documents/{id}", protected("delete_document", s.handleDeleteDocument))
	mux.Handle("POST /api/ask", protected("ask", s.handleAsk))
	mux.Handle("GET /api/health", s.instrument("health", s.handleHealth))
	mux.Handle("GET /api/ready", s.instrument("ready", s.handleReady))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(s.log, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Handler returns the server's root handler, for tests that drive it through
// httptest without a listening socket.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// instrument wraps a handler to record request counts and latency under the
// given logical handler name.
func (s *Server) instrument(name string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rw, r)
		elapsed := time.Since(start)

		s.metrics.httpRequestsTotal.WithLabelValues(r.Method, name, fmt.Sprintf("%d", rw.status)).Inc()
		s.metrics.httpDurationSeconds.WithLabelValues(r.Method, name).Observe(elapsed.Seconds())
	})
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("response encode error", slog.Any("error", err))
	}
}

// writeError sends a JSON error body and logs it at WARN for 4xx and ERROR
// for 5xx.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	log := logging.FromContext(r.Context())
	if status >= 500 {
		log.Error("request failed", slog.Int("status", status), slog.String("error", msg))
	} else {
		log.Warn("request rejected", slog.Int("status", status), slog.String("error", msg))
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
