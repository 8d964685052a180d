package service

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls plain text out of contract and regulation documents.
// It tolerates PDF and plain-text inputs and returns an empty string on
// any failure; callers treat empty text as "nothing to analyze".
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the document's plain text, or "" if the file is
// missing or unreadable.
func (e *Extractor) ExtractText(path string) string {
	if path == "" {
		return ""
	}
	if !fileExists(path) {
		return ""
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDFText(path)
	case ".txt", ".md":
		return readTextFile(path)
	default:
		// Unknown extension: try reading as text
		return readTextFile(path)
	}
}

func extractPDFText(path string) string {
	f, reader, err := pdf.Open(path)
	if err != nil {
		slog.Warn("pdf open failed", "path", path, "error", err)
		return ""
	}
	defer f.Close()

	body, err := reader.GetPlainText()
	if err != nil {
		slog.Warn("pdf text extraction failed", "path", path, "error", err)
		return ""
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		slog.Warn("pdf text read failed", "path", path, "error", err)
		return ""
	}
	return strings.TrimSpace(buf.String())
}

func readTextFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("text read failed", "path", path, "error", err)
		return ""
	}
	return string(data)
}
