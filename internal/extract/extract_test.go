package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildDOCX assembles a minimal valid DOCX container whose document.xml
// holds the given paragraphs.
func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>`)
		doc.WriteString(p)
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(doc.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func Test_Text_PlainText(t *testing.T) {
	t.Parallel()

	got, err := Text([]byte("Remote work is allowed 3 days per week."), TypeText)
	if err != nil {
		t.Fatalf("extract plain text: %v", err)
	}
	if !strings.Contains(got, "3 days per week") {
		t.Errorf("extracted text missing expected content: %q", got)
	}
}

func Test_Text_PlainTextWithParams(t *testing.T) {
	t.Parallel()

	got, err := Text([]byte("hello"), "text/plain; charset=utf-8")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func Test_Text_OctetStreamFallback(t *testing.T) {
	t.Parallel()

	// Invalid UTF-8 bytes are dropped, not raised.
	in := []byte{'o', 'k', 0xff, 0xfe, '!', 0x80}
	got, err := Text(in, TypeOctet)
	if err != nil {
		t.Fatalf("extract octet-stream: %v", err)
	}
	if got != "ok!" {
		t.Errorf("got %q, want %q", got, "ok!")
	}
}

func Test_Text_DOCX(t *testing.T) {
	t.Parallel()

	data := buildDOCX(t, "First paragraph.", "Second paragraph.")
	got, err := Text(data, TypeDOCX)
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if !strings.Contains(got, "First paragraph.") || !strings.Contains(got, "Second paragraph.") {
		t.Errorf("extracted text missing paragraphs: %q", got)
	}
	if !strings.Contains(got, "First paragraph.\nSecond paragraph.") {
		t.Errorf("paragraphs not newline-joined: %q", got)
	}
}

func Test_Text_DOCXMalformed(t *testing.T) {
	t.Parallel()

	_, err := Text([]byte("definitely not a zip archive"), TypeDOCX)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("want ErrMalformed, got %v", err)
	}
}

func Test_Text_DOCXMissingDocumentXML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/other.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte("<x/>")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, extractErr := Text(buf.Bytes(), TypeDOCX)
	if !errors.Is(extractErr, ErrMalformed) {
		t.Errorf("want ErrMalformed, got %v", extractErr)
	}
}

// buildPDF assembles a minimal single-page PDF whose content stream draws
// the given line of text with the built-in Helvetica font. Cross-reference
// offsets are computed as the body is written so the file is well formed.
func buildPDF(t *testing.T, line string) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		"", // content stream, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", line)
	objects[3] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xref)
	return buf.Bytes()
}

func Test_Text_PDF(t *testing.T) {
	t.Parallel()

	data := buildPDF(t, "Remote work is allowed 3 days per week.")
	got, err := Text(data, TypePDF)
	if err != nil {
		t.Fatalf("extract pdf: %v", err)
	}
	if got == "" {
		t.Fatal("extracted text is empty")
	}
	if !strings.Contains(got, "Remote work") || !strings.Contains(got, "3 days per week") {
		t.Errorf("extracted text missing expected content: %q", got)
	}
}

func Test_Text_PDFMalformed(t *testing.T) {
	t.Parallel()

	_, err := Text([]byte("this is not a pdf at all"), TypePDF)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("want ErrMalformed, got %v", err)
	}
}

func Test_Text_UnsupportedType(t *testing.T) {
	t.Parallel()

	tests := []string{
		"image/png",
		"application/zip",
		"video/mp4",
		"",
	}

	for _, declared := range tests {
		_, err := Text([]byte("content"), declared)
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Text(%q): want ErrUnsupportedType, got %v", declared, err)
		}
	}
}
