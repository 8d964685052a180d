package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderPDF(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.pdf")

	r := NewRenderer()
	if err := r.RenderPDF("line one\nline two", "Test Report", out); err != nil {
		t.Fatalf("RenderPDF failed: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("Expected artifact to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected non-empty PDF artifact")
	}

	// Starts with the PDF magic bytes
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("Expected PDF header, got %q", data[:8])
	}
}

func TestRenderPDFCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "deeper", "report.pdf")

	r := NewRenderer()
	if err := r.RenderPDF("body", "", out); err != nil {
		t.Fatalf("RenderPDF failed: %v", err)
	}
	if !fileExists(out) {
		t.Error("Expected artifact in nested directory")
	}
}

func TestRenderPDFEmptyText(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "empty.pdf")

	r := NewRenderer()
	if err := r.RenderPDF("", "Empty", out); err != nil {
		t.Fatalf("RenderPDF failed for empty text: %v", err)
	}
	if !fileExists(out) {
		t.Error("Expected artifact even for empty text")
	}
}

func TestRenderArtifact(t *testing.T) {
	dir := t.TempDir()

	r := NewRenderer()
	path, err := r.RenderArtifact("suggestions body", "nda_SUGGESTIONS", dir)
	if err != nil {
		t.Fatalf("RenderArtifact failed: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %s", path)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "nda_SUGGESTIONS_") || !strings.HasSuffix(base, ".pdf") {
		t.Errorf("Unexpected artifact name: %s", base)
	}
	if !fileExists(path) {
		t.Error("Expected artifact file to exist")
	}
}
