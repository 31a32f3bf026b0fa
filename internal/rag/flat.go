package rag

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
)

// FlatIndex is a VectorStore backed by an in-memory brute-force cosine index
// with a durable gob snapshot. It is the default backend: no external service
// required, and exact (not approximate) nearest-neighbour results.
//
// Mutations are not durable until Persist is called; Add and RemoveDocument
// persist automatically when the index was opened with a snapshot path.
// A sync.RWMutex serializes writes while allowing concurrent searches.
type FlatIndex struct {
	// mu guards entries and vectors. Writers (Add, RemoveDocument, Load)
	// take the write lock; Search takes the read lock.
	mu sync.RWMutex

	// entries holds chunk metadata in insertion order.
	entries []Entry

	// vectors holds the embedding for each entry, parallel to entries.
	vectors [][]float32

	// path is the snapshot file location. Empty means memory-only (tests).
	path string
}

// flatSnapshot is the on-disk representation of a FlatIndex.
type flatSnapshot struct {
	Entries []Entry
	Vectors [][]float32
}

// NewFlatIndex constructs a FlatIndex that snapshots to path after every
// mutation. An empty path yields a memory-only index.
func NewFlatIndex(path string) *FlatIndex {
	return &FlatIndex{path: path}
}

// Load replaces the index contents with the persisted snapshot. A missing or
// unreadable snapshot returns ErrIndexUnavailable so the caller can rebuild
// from the chunk store instead of failing.
func (f *FlatIndex) Load() error {
	if f.path == "" {
		return fmt.Errorf("%w: no snapshot path configured", ErrIndexUnavailable)
	}

	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("%w: open snapshot %s: %v", ErrIndexUnavailable, f.path, err)
	}
	defer file.Close()

	var snap flatSnapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return fmt.Errorf("%w: decode snapshot %s: %v", ErrIndexUnavailable, f.path, err)
	}
	if len(snap.Entries) != len(snap.Vectors) {
		return fmt.Errorf("%w: snapshot %s has %d entries but %d vectors", ErrIndexUnavailable, f.path, len(snap.Entries), len(snap.Vectors))
	}

	f.mu.Lock()
	f.entries = snap.Entries
	f.vectors = snap.Vectors
	f.mu.Unlock()

	return nil
}

// Persist writes the whole index to the snapshot path atomically (write to a
// temp file in the same directory, then rename). Memory-only indexes persist
// nothing and return nil.
func (f *FlatIndex) Persist() error {
	if f.path == "" {
		return nil
	}

	// Clone under the read lock: RemoveDocument compacts the slices in place,
	// so encoding a shared backing array outside the lock would race.
	f.mu.RLock()
	snap := flatSnapshot{Entries: slices.Clone(f.entries), Vectors: slices.Clone(f.vectors)}
	f.mu.RUnlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("rag: create snapshot dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*")
	if err != nil {
		return fmt.Errorf("rag: create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(&snap); err != nil {
		tmp.Close()
		return fmt.Errorf("rag: encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("rag: close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("rag: replace snapshot %s: %w", f.path, err)
	}

	return nil
}

// Add appends entries with their embeddings and persists the snapshot.
func (f *FlatIndex) Add(_ context.Context, entries []Entry, embeddings [][]float32) error {
	if len(entries) != len(embeddings) {
		return fmt.Errorf("rag: %d entries but %d embeddings", len(entries), len(embeddings))
	}
	if len(entries) == 0 {
		return nil
	}

	f.mu.Lock()
	f.entries = append(f.entries, entries...)
	f.vectors = append(f.vectors, embeddings...)
	f.mu.Unlock()

	return f.Persist()
}

// Search returns the top-k entries by cosine similarity to queryEmbedding,
// in descending score order. Ties keep insertion order (the sort is stable
// over an insertion-ordered slice). k is clamped to the entry count.
func (f *FlatIndex) Search(_ context.Context, queryEmbedding []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	results := make([]Result, 0, len(f.entries))
	for i, vec := range f.vectors {
		results = append(results, Result{
			Entry: f.entries[i],
			Score: cosineSimilarity(queryEmbedding, vec),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// RemoveDocument drops every entry tagged with docID and persists the
// snapshot. Removing an unknown docID is a no-op.
func (f *FlatIndex) RemoveDocument(_ context.Context, docID string) error {
	f.mu.Lock()
	kept := f.entries[:0]
	keptVecs := f.vectors[:0]
	for i, e := range f.entries {
		if e.DocID == docID {
			continue
		}
		kept = append(kept, e)
		keptVecs = append(keptVecs, f.vectors[i])
	}
	f.entries = kept
	f.vectors = keptVecs
	f.mu.Unlock()

	return f.Persist()
}

// Count returns the number of indexed entries.
func (f *FlatIndex) Count(_ context.Context) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries), nil
}

// Close is a no-op: the index holds no resources beyond memory.
func (f *FlatIndex) Close() error { return nil }

// cosineSimilarity computes the cosine of the angle between a and b.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
