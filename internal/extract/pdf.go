package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfText extracts text from a PDF, concatenating page text in order.
// Pages whose text cannot be extracted (scanned images, exotic encodings)
// contribute nothing rather than failing the whole document.
//
// The pdf library panics on some malformed inputs instead of returning an
// error, so the whole parse is wrapped in a recover that maps panics to
// ErrMalformed.
func pdfText(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()
	return parsePDF(content)
}

func parsePDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Per-page extraction failure is tolerated as empty page text.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()), nil
}
