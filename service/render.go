package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// Renderer writes plain text into a paginated PDF artifact. All
// generated documents (suggestions reports, rectified contracts,
// regulation snapshots) go through it.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderPDF writes text under an optional bold title line to outPath,
// creating parent directories as needed. Lines wrap and paginate
// automatically.
func (r *Renderer) RenderPDF(text, title, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact dir: %w", err)
	}

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(40, 40, 40)
	doc.SetAutoPageBreak(true, 40)
	doc.AddPage()

	if title != "" {
		doc.SetFont("Helvetica", "B", 14)
		doc.MultiCell(0, 16, title, "", "L", false)
		doc.Ln(12)
	}

	doc.SetFont("Helvetica", "", 9)
	if text == "" {
		text = "[No text]"
	}
	// MultiCell handles wrapping; core fonts only cover latin-1, so
	// strip what they cannot encode.
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.MultiCell(0, 11, tr(text), "", "L", false)

	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// RenderArtifact renders text into dir with a timestamped name derived
// from prefix and returns the absolute artifact path.
func (r *Renderer) RenderArtifact(text, prefix, dir string) (string, error) {
	ts := utcTimestamp()
	out := filepath.Join(dir, fmt.Sprintf("%s_%s.pdf", prefix, ts))
	if err := r.RenderPDF(text, fmt.Sprintf("%s %s", prefix, ts), out); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(out)
	if err != nil {
		return out, nil
	}
	return abs, nil
}
