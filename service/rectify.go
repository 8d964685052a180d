package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

const rectifiedMarker = "RECTIFIED CONTRACT VERSION:"

const rectifySystemPrompt = "You are a senior legal compliance expert specializing in contract law."

const rectifyPromptTemplate = `Given the extracted contract text below, perform these tasks in a structured way:

1. **Key Clauses:** Identify and summarize all important clauses present in the contract
   (e.g., confidentiality, data protection, liability, termination, dispute resolution).

2. **Potential Key Clauses (Missing or Weak):** Identify clauses that are missing or
   should be strengthened to ensure regulatory compliance (DPDP Act, data privacy, etc.).
   Explain why they are important.

3. **Rectified Contract:** Provide an improved or rewritten version of the contract
   that integrates the missing clauses or strengthens weak sections while keeping the
   original context and intent.

Use this structured format:

---
KEY CLAUSES:
<List of key clauses with short summaries>

POTENTIAL KEY CLAUSES:
<List of missing or weak clauses and why they are needed>

RECTIFIED CONTRACT VERSION:
<Provide improved contract version>
---

Context:
%s

Question:
Analyze and rectify this contract for completeness, clause strength, and compliance.`

const rectifyQuestion = "Analyze the contract for clause quality and compliance."

// maxFallbackContext caps the raw-text context used when semantic
// retrieval is unavailable.
const maxFallbackContext = 6000

// Rectifier runs the retrieval-augmented rectification pipeline:
// extract, index, retrieve, complete, then render the rectified section
// as a new contract version artifact.
type Rectifier struct {
	extractor   *Extractor
	embedder    *EmbeddingClient
	completion  *CompletionClient
	renderer    *Renderer
	versionsDir string
}

func NewRectifier(extractor *Extractor, embedder *EmbeddingClient, completion *CompletionClient, renderer *Renderer, versionsDir string) *Rectifier {
	return &Rectifier{
		extractor:   extractor,
		embedder:    embedder,
		completion:  completion,
		renderer:    renderer,
		versionsDir: versionsDir,
	}
}

// Available reports whether the completion collaborator is configured.
func (r *Rectifier) Available() bool {
	return r.completion != nil && r.completion.Available()
}

// Rectify produces a rectified-contract PDF for the given input file
// and returns its path. An empty path with nil error means the model
// produced no rectified section; that is not a failure of the pass.
func (r *Rectifier) Rectify(ctx context.Context, inputPath string) (string, error) {
	text := r.extractor.ExtractText(inputPath)
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	contextText := r.retrieveContext(ctx, text)

	output, err := r.completion.Complete(ctx, []ChatMessage{
		{Role: "system", Content: rectifySystemPrompt},
		{Role: "user", Content: fmt.Sprintf(rectifyPromptTemplate, contextText)},
	})
	if err != nil {
		return "", fmt.Errorf("rectification completion failed: %w", err)
	}

	section := ExtractRectifiedSection(output)
	if section == "" {
		slog.Warn("no rectified section in model output", "input", inputPath)
		return "", nil
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	out := filepath.Join(r.versionsDir, fmt.Sprintf("%s_RECTIFIED_%s.pdf", stem, utcTimestamp()))
	if err := r.renderer.RenderPDF(section, "Rectified Contract - "+stem, out); err != nil {
		return "", fmt.Errorf("failed to render rectified artifact: %w", err)
	}

	abs, err := filepath.Abs(out)
	if err != nil {
		return out, nil
	}
	return abs, nil
}

// retrieveContext gathers the prompt context: top chunks by semantic
// similarity when the embedder is available, otherwise a raw prefix of
// the extracted text.
func (r *Rectifier) retrieveContext(ctx context.Context, text string) string {
	if r.embedder != nil && r.embedder.Available() {
		if idx, err := BuildIndex(ctx, r.embedder, text); err != nil {
			slog.Warn("semantic retrieval failed, falling back to raw text", "error", err)
		} else if chunks, err := idx.Search(ctx, rectifyQuestion, 6); err != nil {
			slog.Warn("semantic retrieval failed, falling back to raw text", "error", err)
		} else if len(chunks) > 0 {
			return strings.Join(chunks, "\n\n")
		}
	}

	runes := []rune(text)
	if len(runes) > maxFallbackContext {
		runes = runes[:maxFallbackContext]
	}
	return string(runes)
}

// ExtractRectifiedSection locates the rectified-contract marker in the
// model output and returns everything after it, trimmed. Case
// insensitive; empty when the marker is absent.
func ExtractRectifiedSection(output string) string {
	idx := strings.Index(strings.ToUpper(output), rectifiedMarker)
	if idx == -1 {
		return ""
	}
	return strings.TrimSpace(output[idx+len(rectifiedMarker):])
}
