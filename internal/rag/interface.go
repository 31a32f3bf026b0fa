// Package rag defines the interfaces for retrieval-augmented generation
// components: vector storage, chunk retrieval, and embedding. Concrete
// implementations (the local flat index, Qdrant) satisfy these interfaces so
// the orchestrators never depend on a specific backend.
package rag

import (
	"context"
	"errors"
)

// ErrIndexUnavailable indicates the persisted vector index is missing or
// unreadable. This is recoverable: callers rebuild the index from the chunk
// store rather than treating it as fatal.
var ErrIndexUnavailable = errors.New("rag: vector index unavailable")

// Entry is a unit of indexed knowledge: one embedded chunk of a document.
type Entry struct {
	// ID is the unique identifier for this chunk.
	ID string

	// DocID is the owning document's ID. Every index entry is tagged with it
	// so a document's vectors can be removed when the document is deleted.
	DocID string

	// DocName is the source document's display name, reported in answer sources.
	DocName string

	// Text is the chunk's raw text content.
	Text string
}

// Result is an Entry returned from a similarity search, with its score.
type Result struct {
	Entry

	// Score is the cosine similarity between the query and this entry's
	// vector (1.0 = identical direction).
	Score float32
}

// VectorStore is the interface for persisting and searching chunk embeddings.
// Implementations must be safe to call from multiple goroutines: Search may
// run concurrently with itself, while Add and RemoveDocument are serialized
// internally.
type VectorStore interface {
	// Add stores a batch of entries with their pre-computed embeddings.
	// The embeddings slice must be parallel to entries — embeddings[i] is the
	// vector for entries[i].
	Add(ctx context.Context, entries []Entry, embeddings [][]float32) error

	// Search returns the top-k entries most similar to the query embedding,
	// ordered by descending similarity, ties broken by insertion order.
	// k is clamped to the number of stored entries.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Result, error)

	// RemoveDocument deletes every entry tagged with the given document ID.
	RemoveDocument(ctx context.Context, docID string) error

	// Count returns the number of entries currently stored.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever is the high-level interface used by the query orchestrator to
// fetch relevant chunks for a question. It combines embedding and vector
// search. Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns the top-k most relevant entries for the given query.
	Retrieve(ctx context.Context, query string, topK int) ([]Result, error)
}
