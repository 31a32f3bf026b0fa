// Package extract converts raw uploaded document bytes into plain text,
// dispatching on the declared MIME type. Supported formats: PDF, DOCX, and
// plain text (with an unknown-binary fallback). Extraction is a pure
// transform — it performs no I/O beyond reading the provided bytes.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Sentinel errors returned by Text. Callers use errors.Is to distinguish an
// unrecognised declared type from a file that claimed a supported type but
// could not be parsed.
var (
	// ErrUnsupportedType indicates the declared content type has no extractor.
	ErrUnsupportedType = errors.New("extract: unsupported content type")

	// ErrMalformed indicates the bytes could not be parsed as the declared type.
	ErrMalformed = errors.New("extract: malformed document")

	// ErrNoText indicates extraction succeeded but produced no usable text.
	ErrNoText = errors.New("extract: document contains no extractable text")
)

// MIME types accepted by Text.
const (
	TypePDF   = "application/pdf"
	TypeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeDOC   = "application/msword"
	TypeText  = "text/plain"
	TypeOctet = "application/octet-stream"
)

// Text extracts plain text from content according to its declared MIME type.
//
//   - PDF: per-page text concatenation; a page with no extractable text
//     contributes an empty string rather than failing the document.
//   - DOCX/DOC: paragraph concatenation, newline-joined.
//   - text/plain and application/octet-stream: best-effort UTF-8 decode with
//     invalid bytes dropped.
//
// Any other declared type returns ErrUnsupportedType.
func Text(content []byte, declaredType string) (string, error) {
	// Strip any media-type parameters (e.g. "text/plain; charset=utf-8").
	mimeType := declaredType
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	switch mimeType {
	case TypePDF:
		return pdfText(content)
	case TypeDOCX, TypeDOC:
		return docxText(content)
	case TypeText, TypeOctet:
		return plainText(content), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, declaredType)
	}
}

// plainText decodes content as UTF-8, dropping invalid bytes.
func plainText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}

	var b strings.Builder
	b.Grow(len(content))
	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		if r != utf8.RuneError || size > 1 {
			b.WriteRune(r)
		}
		content = content[size:]
	}
	return b.String()
}
