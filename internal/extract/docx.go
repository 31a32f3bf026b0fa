package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docxText extracts text from a DOCX file by reading word/document.xml out of
// the ZIP container and concatenating the text runs of each paragraph,
// newline-joined.
func docxText(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a zip container: %v", ErrMalformed, err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open document.xml: %v", ErrMalformed, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read document.xml: %v", ErrMalformed, err)
		}

		return parseDocumentXML(raw)
	}

	return "", fmt.Errorf("%w: missing word/document.xml", ErrMalformed)
}

// documentXML mirrors the subset of word/document.xml we care about:
// paragraphs containing runs containing text elements.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML joins the text runs of each paragraph with newlines.
func parseDocumentXML(raw []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("%w: parse document.xml: %v", ErrMalformed, err)
	}

	var b strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				b.WriteString(t.Content)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
