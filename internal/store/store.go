// Package store provides the SQLite-backed document and chunk store.
// Document metadata and per-chunk records (including embeddings) are
// persisted here; the vector index is a rebuildable projection of this
// store, never the other way around.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// ErrNotFound is returned when a document ID does not exist.
var ErrNotFound = errors.New("store: document not found")

// Status is the processing state of an uploaded document.
type Status string

const (
	// StatusProcessed means extraction, chunking, embedding, and indexing all succeeded.
	StatusProcessed Status = "processed"
	// StatusFailed means some pipeline stage failed; Error holds the detail.
	StatusFailed Status = "failed"
)

// Document is the persisted metadata record for one uploaded file.
type Document struct {
	// ID is the unique document identifier assigned at upload.
	ID string
	// Name is the original file name.
	Name string
	// Size is the uploaded payload size in bytes.
	Size int64
	// ContentType is the declared MIME type at upload.
	ContentType string
	// UploadedAt is when the document was received.
	UploadedAt time.Time
	// ChunkCount is the number of chunks produced during ingestion.
	ChunkCount int
	// Status records whether ingestion succeeded.
	Status Status
	// Error holds the failure detail when Status is failed.
	Error string
}

// Chunk is one embedded segment of a document's cleaned text.
type Chunk struct {
	// ID is the unique chunk identifier.
	ID string
	// DocID is the owning document's ID.
	DocID string
	// Index is the chunk's position within the document (0-based).
	Index int
	// Text is the chunk's raw text.
	Text string
	// Embedding is the chunk's vector, persisted so the index can be rebuilt
	// without re-embedding.
	Embedding []float32
}

// DocumentStore persists documents and their chunks. Implementations must be
// safe for concurrent use.
type DocumentStore interface {
	// SaveDocument inserts or replaces a document metadata record.
	SaveDocument(ctx context.Context, doc *Document) error
	// SaveChunks inserts a batch of chunk records.
	SaveChunks(ctx context.Context, chunks []Chunk) error
	// GetDocument returns the document with the given ID, or ErrNotFound.
	GetDocument(ctx context.Context, id string) (*Document, error)
	// ListDocuments returns all documents in storage (upload) order.
	ListDocuments(ctx context.Context) ([]Document, error)
	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
	// DeleteDocument removes the document and all its chunks in one
	// transaction. Returns ErrNotFound if the ID does not exist.
	DeleteDocument(ctx context.Context, id string) error
	// DeleteChunks removes all chunks for a document, leaving the document
	// record alone. Used to clean up partial writes when ingestion fails.
	DeleteChunks(ctx context.Context, docID string) error
	// AllChunks returns every stored chunk, ordered by document then chunk
	// index. Used to rebuild the vector index from scratch.
	AllChunks(ctx context.Context) ([]Chunk, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a DocumentStore backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

var _ DocumentStore = (*SQLiteStore)(nil)

// DefaultDBPath returns the default path for the document database.
// It resolves to ~/.docqa/docqa.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".docqa")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "docqa.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
    id           TEXT    PRIMARY KEY,
    name         TEXT    NOT NULL,
    size         INTEGER NOT NULL,
    content_type TEXT    NOT NULL,
    uploaded_at  INTEGER NOT NULL,  -- Unix timestamp (seconds)
    chunk_count  INTEGER NOT NULL DEFAULT 0,
    status       TEXT    NOT NULL CHECK(status IN ('processed','failed')),
    error        TEXT    NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS chunks (
    id        TEXT    PRIMARY KEY,
    doc_id    TEXT    NOT NULL,
    idx       INTEGER NOT NULL,
    text      TEXT    NOT NULL,
    embedding BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks (doc_id, idx);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// SaveDocument inserts or replaces a document metadata record.
func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *Document) error {
	const q = `
INSERT INTO documents (id, name, size, content_type, uploaded_at, chunk_count, status, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    chunk_count = excluded.chunk_count,
    status      = excluded.status,
    error       = excluded.error`
	_, err := s.db.ExecContext(ctx, q,
		doc.ID, doc.Name, doc.Size, doc.ContentType,
		doc.UploadedAt.Unix(), doc.ChunkCount, string(doc.Status), doc.Error,
	)
	if err != nil {
		return fmt.Errorf("store: save document %s: %w", doc.ID, err)
	}
	return nil
}

// SaveChunks inserts a batch of chunk records in a single transaction.
func (s *SQLiteStore) SaveChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin chunk tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const q = `INSERT INTO chunks (id, doc_id, idx, text, embedding) VALUES (?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("store: prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocID, c.Index, c.Text, encodeVector(c.Embedding)); err != nil {
			return fmt.Errorf("store: insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit chunks: %w", err)
	}
	return nil
}

// GetDocument returns the document with the given ID, or ErrNotFound.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*Document, error) {
	const q = `
SELECT id, name, size, content_type, uploaded_at, chunk_count, status, error
FROM   documents WHERE id = ?`
	doc, err := scanDocument(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document %s: %w", id, err)
	}
	return doc, nil
}

// ListDocuments returns all documents in storage order.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]Document, error) {
	const q = `
SELECT id, name, size, content_type, uploaded_at, chunk_count, status, error
FROM   documents ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list rows: %w", err)
	}
	return docs, nil
}

// CountDocuments returns the number of stored documents.
func (s *SQLiteStore) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count documents: %w", err)
	}
	return n, nil
}

// DeleteDocument removes the document and all its chunks in one transaction,
// so the caller never observes orphaned chunks. Returns ErrNotFound if the
// ID does not exist.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin delete tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete document %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete document %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete chunks of %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit delete: %w", err)
	}
	return nil
}

// DeleteChunks removes all chunks for a document without touching the
// document record.
func (s *SQLiteStore) DeleteChunks(ctx context.Context, docID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("store: delete chunks of %s: %w", docID, err)
	}
	return nil
}

// AllChunks returns every stored chunk ordered by document then chunk index.
func (s *SQLiteStore) AllChunks(ctx context.Context) ([]Chunk, error) {
	const q = `SELECT id, doc_id, idx, text, embedding FROM chunks ORDER BY doc_id, idx`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: all chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocID, &c.Index, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("store: chunk scan: %w", err)
		}
		c.Embedding, err = decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("store: chunk %s: %w", c.ID, err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: chunk rows: %w", err)
	}
	return chunks, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanDocument.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument reads one documents row into a Document.
func scanDocument(row scanner) (*Document, error) {
	var doc Document
	var uploadedAt int64
	var status string
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Size, &doc.ContentType,
		&uploadedAt, &doc.ChunkCount, &status, &doc.Error); err != nil {
		return nil, err
	}
	doc.UploadedAt = time.Unix(uploadedAt, 0).UTC()
	doc.Status = Status(status)
	return &doc, nil
}

// encodeVector serialises an embedding as little-endian float32 bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector deserialises a little-endian float32 blob.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("store: embedding blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
