package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/docuseek/docqa-go/internal/ingestion"
	"github.com/docuseek/docqa-go/internal/qa"
	"github.com/docuseek/docqa-go/internal/rag"
	"github.com/docuseek/docqa-go/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// MaxUploadBytes caps the total size of one upload request.
	// Defaults to 32 MiB if zero.
	MaxUploadBytes int64
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [slog.Default] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Registry receives the server's Prometheus metrics. If nil a private
	// registry is created and served at GET /metrics.
	Registry *prometheus.Registry
}

// ingestor is the interface the upload handler calls to process files.
// *ingestion.Pipeline satisfies it; tests inject a fake.
type ingestor interface {
	Ingest(ctx context.Context, files []ingestion.FileInput) []ingestion.FileResult
}

// asker is the interface the ask handler calls to answer a question.
// *qa.Service satisfies it; tests inject a fake.
type asker interface {
	Ask(ctx context.Context, question string, topK int) (*qa.Answer, error)
}

// Server is the HTTP server exposing the document QA API.
type Server struct {
	// pipeline processes uploaded files.
	pipeline ingestor
	// qa answers questions against the ingested corpus.
	qa asker
	// docs is the document metadata store backing list and delete.
	docs store.DocumentStore
	// index is the vector index; delete removes a document's chunks from it.
	index rag.VectorStore
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// askRequest is the JSON body for POST /api/ask.
type askRequest struct {
	// Question is the natural language question to answer.
	Question string `json:"question"`
	// TopK overrides the number of chunks retrieved. Zero uses the default.
	TopK int `json:"top_k,omitempty"`
}

// documentResponse is one entry in the GET /api/documents listing.
type documentResponse struct {
	// ID is the document's unique identifier.
	ID string `json:"id"`
	// Name is the original filename.
	Name string `json:"name"`
	// SizeBytes is the uploaded file size.
	SizeBytes int64 `json:"size_bytes"`
	// ContentType is the stored MIME type.
	ContentType string `json:"content_type"`
	// UploadedAt is the ingestion timestamp in RFC 3339.
	UploadedAt time.Time `json:"uploaded_at"`
	// ChunkCount is the number of indexed chunks.
	ChunkCount int `json:"chunk_count"`
	// Status is "processed" or "failed".
	Status string `json:"status"`
	// Error carries the failure reason for failed documents.
	Error string `json:"error,omitempty"`
}

// uploadResult is the per-file outcome in the POST /api/documents response.
type uploadResult struct {
	// ID is the generated document ID.
	ID string `json:"id"`
	// Name echoes the uploaded filename.
	Name string `json:"name"`
	// Size is the uploaded file size in bytes.
	Size int64 `json:"size"`
	// Type is the MIME type the file was processed as.
	Type string `json:"type"`
	// UploadedAt is the ingestion timestamp in RFC 3339.
	UploadedAt time.Time `json:"uploaded_at"`
	// ChunkCount is the number of chunks indexed for this file.
	ChunkCount int `json:"chunk_count"`
	// Status is "processed" or "failed".
	Status string `json:"status"`
	// Error carries the failure reason when Status is "failed".
	Error string `json:"error,omitempty"`
}

// uploadResponse is the JSON body returned by POST /api/documents.
type uploadResponse struct {
	// Documents lists the per-file outcomes in upload order.
	Documents []uploadResult `json:"documents"`
}

// errorResponse is the JSON error body used by all handlers.
type errorResponse struct {
	// Error is a human-readable description of what went wrong.
	Error string `json:"error"`
}
