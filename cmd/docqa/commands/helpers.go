package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/docuseek/docqa-go/internal/embedder"
	"github.com/docuseek/docqa-go/internal/ingestion"
	"github.com/docuseek/docqa-go/internal/rag"
	"github.com/docuseek/docqa-go/internal/store"
)

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// defaultIndexPath resolves the flat index snapshot path: DOCQA_INDEX_PATH
// if set, otherwise ~/.docqa/index.gob.
func defaultIndexPath() (string, error) {
	if p := os.Getenv("DOCQA_INDEX_PATH"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".docqa")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return filepath.Join(dir, "index.gob"), nil
}

// openDocumentStore opens the SQLite document store at DOCQA_DB or the
// default path.
func openDocumentStore(log *slog.Logger) (store.DocumentStore, error) {
	path := os.Getenv("DOCQA_DB")
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolving database path: %w", err)
		}
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document store at %s: %w", path, err)
	}
	log.Info("document store opened", slog.String("path", path))
	return s, nil
}

// openVectorIndex builds the vector index selected by VECTOR_BACKEND.
// The flat backend loads its snapshot from disk and, if the snapshot is
// missing or unreadable, rebuilds the index from the chunks persisted in the
// document store. The returned cleanup function closes the index.
func openVectorIndex(ctx context.Context, docs store.DocumentStore, log *slog.Logger) (rag.VectorStore, func(), error) {
	backend := getEnvOrDefault("VECTOR_BACKEND", "flat")

	if backend == "qdrant" {
		embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))
		qs, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
			Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
			Port:       getEnvInt("QDRANT_PORT", 6334),
			Collection: getEnvOrDefault("QDRANT_COLLECTION", "docqa-chunks"),
			VectorSize: uint64(embedder.DefaultDimensions(embBackend)), //nolint:gosec // dimensions are bounded
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to qdrant: %w", err)
		}
		log.Info("vector index ready", slog.String("backend", "qdrant"))
		return qs, func() { qs.Close() }, nil
	}

	path, err := defaultIndexPath()
	if err != nil {
		return nil, nil, err
	}
	index := rag.NewFlatIndex(path)
	if err := index.Load(); err != nil {
		if !errors.Is(err, rag.ErrIndexUnavailable) {
			return nil, nil, fmt.Errorf("loading index snapshot: %w", err)
		}
		n, rerr := ingestion.Rebuild(ctx, docs, index)
		if rerr != nil {
			return nil, nil, fmt.Errorf("rebuilding index: %w", rerr)
		}
		log.Info("index rebuilt from document store", slog.Int("chunks", n))
	}
	log.Info("vector index ready", slog.String("backend", "flat"), slog.String("path", path))
	return index, func() { index.Close() }, nil
}

// buildPipeline wires the ingestion pipeline from the embedder env config and
// the CHUNK_SIZE / CHUNK_OVERLAP overrides.
func buildPipeline(docs store.DocumentStore, index rag.VectorStore, log *slog.Logger) (*ingestion.Pipeline, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, fmt.Errorf("embedder configuration: %w", err)
	}
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("initialising embedder: %w", err)
	}
	return ingestion.NewPipeline(emb, docs, index, &ingestion.Config{
		ChunkSize:    getEnvInt("CHUNK_SIZE", 0),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 0),
	})
}
