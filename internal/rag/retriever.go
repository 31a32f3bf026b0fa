package rag

import (
	"context"
	"fmt"
)

// DefaultRetriever answers similarity queries by embedding the question text
// and delegating the search to a VectorStore. It is the retrieval half of
// the ask path; the generator consumes what it returns.
type DefaultRetriever struct {
	embedder    Embedder
	store       VectorStore
	defaultTopK int
}

// NewRetriever wires an Embedder to a VectorStore. defaultTopK is used when
// Retrieve is called with topK <= 0.
func NewRetriever(embedder Embedder, store VectorStore, defaultTopK int) (*DefaultRetriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("rag: store must not be nil")
	}
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	return &DefaultRetriever{embedder: embedder, store: store, defaultTopK: defaultTopK}, nil
}

// Retrieve returns the topK chunks most similar to query, best first.
func (r *DefaultRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = r.defaultTopK
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("rag: embedder returned no vector for query")
	}

	results, err := r.store.Search(ctx, vecs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search: %w", err)
	}
	return results, nil
}
