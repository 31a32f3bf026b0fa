package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

// openTestStore opens an in-memory SQLiteStore for use in tests.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// saveTestDocument persists a processed document with two chunks.
func saveTestDocument(t *testing.T, s *SQLiteStore, id, name string) {
	t.Helper()
	ctx := context.Background()

	doc := &Document{
		ID:          id,
		Name:        name,
		Size:        42,
		ContentType: "text/plain",
		UploadedAt:  time.Now(),
		ChunkCount:  2,
		Status:      StatusProcessed,
	}
	if err := s.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("save document: %v", err)
	}

	chunks := []Chunk{
		{ID: id + "-0", DocID: id, Index: 0, Text: "first chunk", Embedding: []float32{0.1, 0.2}},
		{ID: id + "-1", DocID: id, Index: 1, Text: "second chunk", Embedding: []float32{0.3, 0.4}},
	}
	if err := s.SaveChunks(ctx, chunks); err != nil {
		t.Fatalf("save chunks: %v", err)
	}
}

func Test_Store_SaveAndGetDocument(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	saveTestDocument(t, s, "doc-1", "policy.txt")

	doc, err := s.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Name != "policy.txt" || doc.ChunkCount != 2 || doc.Status != StatusProcessed {
		t.Errorf("document mismatch: %+v", doc)
	}
}

func Test_Store_GetMissingDocument(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	_, err := s.GetDocument(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func Test_Store_ListPreservesOrder(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	saveTestDocument(t, s, "doc-a", "a.txt")
	saveTestDocument(t, s, "doc-b", "b.txt")
	saveTestDocument(t, s, "doc-c", "c.txt")

	docs, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("want 3 documents, got %d", len(docs))
	}
	if docs[0].ID != "doc-a" || docs[1].ID != "doc-b" || docs[2].ID != "doc-c" {
		t.Errorf("storage order lost: %v, %v, %v", docs[0].ID, docs[1].ID, docs[2].ID)
	}
}

func Test_Store_DeleteCascadesToChunks(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	saveTestDocument(t, s, "doc-1", "a.txt")
	saveTestDocument(t, s, "doc-2", "b.txt")

	if err := s.DeleteDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetDocument(ctx, "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("document should be gone, got %v", err)
	}

	chunks, err := s.AllChunks(ctx)
	if err != nil {
		t.Fatalf("all chunks: %v", err)
	}
	for _, c := range chunks {
		if c.DocID == "doc-1" {
			t.Errorf("orphaned chunk survived delete: %+v", c)
		}
	}
	if len(chunks) != 2 {
		t.Errorf("doc-2 chunks should survive, got %d chunks", len(chunks))
	}
}

func Test_Store_DeleteMissingDocument(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	err := s.DeleteDocument(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func Test_Store_EmbeddingRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	want := []float32{0.25, -1.5, 3.14159, 0}
	doc := &Document{ID: "d", Name: "d.txt", ContentType: "text/plain", UploadedAt: time.Now(), Status: StatusProcessed}
	if err := s.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("save document: %v", err)
	}
	if err := s.SaveChunks(ctx, []Chunk{{ID: "c", DocID: "d", Text: "t", Embedding: want}}); err != nil {
		t.Fatalf("save chunks: %v", err)
	}

	chunks, err := s.AllChunks(ctx)
	if err != nil {
		t.Fatalf("all chunks: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("want 1 chunk, got %d", len(chunks))
	}
	got := chunks[0].Embedding
	if len(got) != len(want) {
		t.Fatalf("embedding length: want %d, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("embedding[%d]: want %f, got %f", i, want[i], got[i])
		}
	}
}

func Test_Store_DeleteChunksKeepsDocument(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	saveTestDocument(t, s, "doc-1", "a.txt")

	if err := s.DeleteChunks(ctx, "doc-1"); err != nil {
		t.Fatalf("delete chunks: %v", err)
	}

	if _, err := s.GetDocument(ctx, "doc-1"); err != nil {
		t.Errorf("document record should survive chunk cleanup: %v", err)
	}
	chunks, err := s.AllChunks(ctx)
	if err != nil {
		t.Fatalf("all chunks: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("want 0 chunks after cleanup, got %d", len(chunks))
	}
}

func Test_Store_SaveDocumentUpsertsStatus(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	doc := &Document{ID: "d", Name: "d.txt", ContentType: "text/plain", UploadedAt: time.Now(), Status: StatusProcessed, ChunkCount: 5}
	if err := s.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	doc.Status = StatusFailed
	doc.Error = "index write failed"
	if err := s.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	got, err := s.GetDocument(ctx, "d")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusFailed || got.Error != "index write failed" {
		t.Errorf("status not updated: %+v", got)
	}
}
