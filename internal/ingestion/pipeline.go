// Package ingestion implements the document ingestion pipeline.
// It extracts text from uploaded files, cleans and chunks it, embeds each
// chunk, and writes the results to the document store and the vector index.
// The pipeline is invoked by the upload API handler and the `docqa ingest`
// CLI command.
package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docuseek/docqa-go/internal/extract"
	"github.com/docuseek/docqa-go/internal/logging"
	"github.com/docuseek/docqa-go/internal/rag"
	"github.com/docuseek/docqa-go/internal/store"
	"github.com/docuseek/docqa-go/internal/textproc"
)

// FileInput is one file submitted for ingestion.
type FileInput struct {
	// Name is the original filename as supplied by the caller.
	Name string

	// ContentType is the declared MIME type. When empty the type is
	// inferred from the filename extension.
	ContentType string

	// Content is the raw file bytes.
	Content []byte
}

// FileResult reports the outcome of ingesting one file. A batch never fails
// as a whole; each file succeeds or fails on its own.
type FileResult struct {
	// DocID is the generated document ID (set on success and on failures
	// that were recorded in the store).
	DocID string

	// Name echoes the input filename.
	Name string

	// Size is the file size in bytes.
	Size int64

	// ContentType is the MIME type the file was processed as, either the
	// declared type or the one inferred from the filename.
	ContentType string

	// UploadedAt is when ingestion of this file started.
	UploadedAt time.Time

	// ChunkCount is the number of chunks indexed for this file.
	ChunkCount int

	// Err is non-nil if ingestion of this file failed.
	Err error
}

// Config holds chunking configuration for the pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per chunk.
	// Defaults to textproc.DefaultChunkSize if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters shared between consecutive
	// chunks. Defaults to textproc.DefaultChunkOverlap if zero.
	ChunkOverlap int
}

// Pipeline orchestrates the extract → clean → chunk → embed → index flow.
type Pipeline struct {
	embedder rag.Embedder
	docs     store.DocumentStore
	index    rag.VectorStore
	cfg      *Config
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, docs store.DocumentStore, index rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if docs == nil {
		return nil, fmt.Errorf("ingestion: document store must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("ingestion: vector index must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = textproc.DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = textproc.DefaultChunkOverlap
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 10
	}

	return &Pipeline{
		embedder: embedder,
		docs:     docs,
		index:    index,
		cfg:      cfg,
	}, nil
}

// Ingest processes each file independently and returns one result per input,
// in input order. A failed file is recorded in the document store with
// StatusFailed so it shows up in listings with its error message.
func (p *Pipeline) Ingest(ctx context.Context, files []FileInput) []FileResult {
	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		results = append(results, p.ingestOne(ctx, f))
	}
	return results
}

// ingestOne runs the full pipeline for a single file.
func (p *Pipeline) ingestOne(ctx context.Context, f FileInput) FileResult {
	log := logging.FromContext(ctx).With("file", f.Name)

	contentType := f.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(f.Name)
	}

	res := FileResult{
		DocID:       uuid.NewString(),
		Name:        f.Name,
		Size:        int64(len(f.Content)),
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}

	doc := store.Document{
		ID:          res.DocID,
		Name:        res.Name,
		Size:        res.Size,
		ContentType: res.ContentType,
		UploadedAt:  res.UploadedAt,
	}

	text, err := extract.Text(f.Content, contentType)
	if err != nil {
		return p.fail(ctx, doc, res, fmt.Errorf("ingestion: extract %s: %w", f.Name, err))
	}

	cleaned := textproc.Clean(text)
	chunks, err := textproc.Split(cleaned, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	if err != nil {
		return p.fail(ctx, doc, res, fmt.Errorf("ingestion: chunk %s: %w", f.Name, err))
	}
	if len(chunks) == 0 {
		return p.fail(ctx, doc, res, fmt.Errorf("ingestion: %s: %w", f.Name, extract.ErrNoText))
	}

	embeddings, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		return p.fail(ctx, doc, res, fmt.Errorf("ingestion: embed %s: %w", f.Name, err))
	}
	if len(embeddings) != len(chunks) {
		return p.fail(ctx, doc, res, fmt.Errorf("ingestion: embed %s: got %d embeddings for %d chunks", f.Name, len(embeddings), len(chunks)))
	}

	stored := make([]store.Chunk, 0, len(chunks))
	entries := make([]rag.Entry, 0, len(chunks))
	for i, text := range chunks {
		id := uuid.NewString()
		stored = append(stored, store.Chunk{
			ID:        id,
			DocID:     doc.ID,
			Index:     i,
			Text:      text,
			Embedding: embeddings[i],
		})
		entries = append(entries, rag.Entry{
			ID:      id,
			DocID:   doc.ID,
			DocName: doc.Name,
			Text:    text,
		})
	}

	doc.ChunkCount = len(chunks)
	doc.Status = store.StatusProcessed
	if err := p.docs.SaveDocument(ctx, &doc); err != nil {
		return p.fail(ctx, doc, res, fmt.Errorf("ingestion: save document %s: %w", f.Name, err))
	}
	if err := p.docs.SaveChunks(ctx, stored); err != nil {
		return p.fail(ctx, doc, res, fmt.Errorf("ingestion: save chunks for %s: %w", f.Name, err))
	}
	if err := p.index.Add(ctx, entries, embeddings); err != nil {
		// Keep the store and index consistent: drop the chunks that were
		// persisted but never indexed.
		if derr := p.docs.DeleteChunks(ctx, doc.ID); derr != nil {
			log.Error("cleanup after index failure", "error", derr)
		}
		return p.fail(ctx, doc, res, fmt.Errorf("ingestion: index %s: %w", f.Name, err))
	}

	res.ChunkCount = len(chunks)
	log.Info("document ingested", "doc_id", doc.ID, "chunks", len(chunks))
	return res
}

// fail records the document with failed status and returns the result. The
// failed record keeps the upload visible in listings with its error message.
func (p *Pipeline) fail(ctx context.Context, doc store.Document, res FileResult, err error) FileResult {
	log := logging.FromContext(ctx)
	doc.ChunkCount = 0
	doc.Status = store.StatusFailed
	doc.Error = err.Error()
	if serr := p.docs.SaveDocument(ctx, &doc); serr != nil {
		log.Error("record failed ingestion", "file", doc.Name, "error", serr)
	}
	log.Warn("ingestion failed", "file", doc.Name, "error", err)
	res.Err = err
	return res
}

// Rebuild repopulates the vector index from the chunks persisted in the
// document store. Embeddings are stored alongside the chunk text, so no
// re-embedding happens here.
func Rebuild(ctx context.Context, docs store.DocumentStore, index rag.VectorStore) (int, error) {
	chunks, err := docs.AllChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("ingestion: load chunks for rebuild: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	names := make(map[string]string)
	documents, err := docs.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("ingestion: load documents for rebuild: %w", err)
	}
	for _, d := range documents {
		names[d.ID] = d.Name
	}

	entries := make([]rag.Entry, 0, len(chunks))
	embeddings := make([][]float32, 0, len(chunks))
	for _, c := range chunks {
		entries = append(entries, rag.Entry{
			ID:      c.ID,
			DocID:   c.DocID,
			DocName: names[c.DocID],
			Text:    c.Text,
		})
		embeddings = append(embeddings, c.Embedding)
	}
	if err := index.Add(ctx, entries, embeddings); err != nil {
		return 0, fmt.Errorf("ingestion: rebuild index: %w", err)
	}
	return len(entries), nil
}
