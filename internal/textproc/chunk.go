package textproc

import (
	"fmt"
)

// Default chunking parameters used by the ingestion pipeline.
const (
	// DefaultChunkSize is the maximum number of characters per chunk.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the number of characters shared between
	// consecutive chunks, preserving context across chunk boundaries.
	DefaultChunkOverlap = 200
)

// Split divides text into overlapping windows of at most size characters,
// with overlap characters shared between consecutive chunks. Chunks are
// returned in document order; the final chunk may be shorter than size.
// Empty or whitespace-only input yields nil.
//
// size must be strictly greater than overlap — otherwise the window could
// never advance — and both must be positive. Violations fail fast.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("textproc: chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("textproc: chunk overlap must not be negative, got %d", overlap)
	}
	if size <= overlap {
		return nil, fmt.Errorf("textproc: chunk size (%d) must exceed overlap (%d)", size, overlap)
	}

	if len(text) == 0 {
		return nil, nil
	}

	var chunks []string
	for start := 0; start < len(text); start += size - overlap {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}

	return chunks, nil
}
