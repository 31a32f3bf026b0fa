package ingestion

import (
	"path/filepath"
	"strings"

	"github.com/docuseek/docqa-go/internal/extract"
)

// extensionTypes maps filename extensions to the MIME types the extractor
// understands. Explicit caller-supplied content types take precedence; this
// is the fallback when a file arrives without one (CLI ingestion, curl
// uploads without a type).
var extensionTypes = map[string]string{
	".pdf":  extract.TypePDF,
	".docx": extract.TypeDOCX,
	".doc":  extract.TypeDOC,
	".txt":  extract.TypeText,
	".md":   extract.TypeText,
	".log":  extract.TypeText,
	".csv":  extract.TypeText,
}

// ContentTypeFor returns the MIME type inferred from the filename extension.
// Unknown extensions map to application/octet-stream, which the extractor
// treats as plain text.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return extract.TypeOctet
}
