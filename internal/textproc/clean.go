// Package textproc implements the text normalisation and chunking stages of
// the ingestion pipeline. Extracted document text passes through Clean before
// being split into overlapping chunks by Split; the chunks are the unit of
// embedding and retrieval.
package textproc

import (
	"strings"
)

// Clean normalises extracted document text for chunking and embedding.
// It collapses runs of whitespace (including newlines) to a single space,
// strips NUL bytes, replaces characters outside the printable-ASCII range
// with a space, and trims the result.
//
// Clean is pure and idempotent: Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == 0:
			// NUL bytes are dropped outright, never replaced with a space.
			continue
		case c >= ' ' && c <= '~':
			if c == ' ' {
				if lastSpace {
					continue
				}
				lastSpace = true
			} else {
				lastSpace = false
			}
			b.WriteByte(c)
		default:
			// Whitespace and non-printable bytes (including every byte of a
			// multi-byte UTF-8 sequence) collapse into a single space.
			if lastSpace {
				continue
			}
			b.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}
