package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	text, err := e.ExtractBytes([]byte("1. Confidentiality\nEach party agrees."), ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Confidentiality") {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestExtractBytes_invalidUTF8(t *testing.T) {
	e := NewExtractor()
	text, err := e.ExtractBytes([]byte{0x68, 0x69, 0xff, 0xfe}, ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "hi") {
		t.Errorf("expected valid prefix, got %q", text)
	}
}

func TestExtractBytes_unsupported(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("x"), ".exe"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestSupported(t *testing.T) {
	e := NewExtractor()
	for ext, want := range map[string]bool{
		".pdf": true, ".docx": true, ".txt": true, ".PDF": true,
		".exe": false, ".xlsx": false, "": false,
	} {
		if got := e.Supported(ext); got != want {
			t.Errorf("Supported(%q) = %v, want %v", ext, got, want)
		}
	}
}

// buildDOCX builds a minimal .docx zip whose document.xml contains the given paragraphs.
func buildDOCX(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0"?><w:document><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p w:rsidR="00000000"><w:r><w:t xml:space="preserve">`)
		doc.WriteString(p)
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)
	if _, err := w.Write([]byte(doc.String())); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	content := buildDOCX(t, []string{"WEBSITE DESIGN AGREEMENT", "1. Confidentiality", "Each party agrees to keep secrets."})
	e := NewExtractor()
	text, err := e.ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatal(err)
	}
	// Paragraphs become separate lines so the segmenter sees heading boundaries.
	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), text)
	}
	if lines[1] != "1. Confidentiality" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestExtractBytes_docxNotZip(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a zip"), ".docx"); err == nil {
		t.Fatal("expected error for non-zip docx")
	}
}

func TestExtract_file(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.txt")
	if err := os.WriteFile(path, []byte("some contract body"), 0600); err != nil {
		t.Fatal(err)
	}
	e := NewExtractor()
	text, err := e.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if text != "some contract body" {
		t.Errorf("unexpected text: %q", text)
	}
}
