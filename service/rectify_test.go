package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/config"
)

func TestExtractRectifiedSection(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected string
	}{
		{
			name:     "marker present",
			output:   "KEY CLAUSES:\nstuff\n\nRECTIFIED CONTRACT VERSION:\nThe improved contract.",
			expected: "The improved contract.",
		},
		{
			name:     "marker lowercase",
			output:   "rectified contract version:\nfixed text",
			expected: "fixed text",
		},
		{
			name:     "marker absent",
			output:   "The model refused to answer.",
			expected: "",
		},
		{
			name:     "empty output",
			output:   "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractRectifiedSection(tt.output); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func completionServerReturning(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func newTestRectifier(t *testing.T, llmURL string) (*Rectifier, string) {
	t.Helper()
	dir := t.TempDir()
	completion := NewCompletionClient(&config.LLMConfig{APIURL: llmURL, APIKey: "test", Model: "m"})
	embedder := NewEmbeddingClient(&config.EmbeddingConfig{}) // unavailable: raw-text fallback
	rect := NewRectifier(NewExtractor(), embedder, completion, NewRenderer(), filepath.Join(dir, "versions"))
	return rect, dir
}

func TestRectifyProducesArtifact(t *testing.T) {
	server := completionServerReturning(t, "ANALYSIS...\nRECTIFIED CONTRACT VERSION:\nNew and improved clauses.")
	defer server.Close()

	rect, dir := newTestRectifier(t, server.URL)

	input := filepath.Join(dir, "nda.txt")
	if err := os.WriteFile(input, []byte("Original contract body."), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err := rect.Rectify(context.Background(), input)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	if out == "" {
		t.Fatal("Expected artifact path")
	}
	if !strings.Contains(filepath.Base(out), "nda_RECTIFIED_") {
		t.Errorf("Unexpected artifact name: %s", out)
	}
	if !fileExists(out) {
		t.Error("Expected artifact file on disk")
	}
}

func TestRectifyNoMarkerInOutput(t *testing.T) {
	server := completionServerReturning(t, "I could not improve this contract.")
	defer server.Close()

	rect, dir := newTestRectifier(t, server.URL)

	input := filepath.Join(dir, "nda.txt")
	if err := os.WriteFile(input, []byte("Original contract body."), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err := rect.Rectify(context.Background(), input)
	if err != nil {
		t.Errorf("Missing marker should not be a failure: %v", err)
	}
	if out != "" {
		t.Errorf("Expected empty path for missing marker, got %s", out)
	}
}

func TestRectifyEmptyInput(t *testing.T) {
	server := completionServerReturning(t, "unused")
	defer server.Close()

	rect, dir := newTestRectifier(t, server.URL)

	input := filepath.Join(dir, "blank.txt")
	if err := os.WriteFile(input, []byte("   \n  "), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err := rect.Rectify(context.Background(), input)
	if err != nil || out != "" {
		t.Errorf("Expected no-op for empty document, got (%q, %v)", out, err)
	}
}

func TestRectifyCompletionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "rate limited"}})
	}))
	defer server.Close()

	rect, dir := newTestRectifier(t, server.URL)

	input := filepath.Join(dir, "nda.txt")
	if err := os.WriteFile(input, []byte("Contract body."), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := rect.Rectify(context.Background(), input); err == nil {
		t.Error("Expected error when completion fails")
	}
}

func TestRetrieveContextLogsSearchFailure(t *testing.T) {
	// Embedding endpoint succeeds for the chunk batch but fails for the
	// single-text query embed, so BuildIndex works and Search errors.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Input) == 1 {
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "query embed refused"}})
			return
		}
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"embedding": []float32{1, 0}, "index": i}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer server.Close()

	var logged bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logged, nil)))
	defer slog.SetDefault(prev)

	embedder := NewEmbeddingClient(&config.EmbeddingConfig{APIURL: server.URL, APIKey: "test", Model: "m"})
	rect := NewRectifier(NewExtractor(), embedder, NewCompletionClient(&config.LLMConfig{APIKey: "k"}), NewRenderer(), t.TempDir())

	text := strings.Repeat("contract clause text ", 120)
	got := rect.retrieveContext(context.Background(), text)
	if !strings.HasPrefix(got, "contract clause") {
		t.Errorf("Expected raw-text fallback, got %q", got[:40])
	}
	if !strings.Contains(logged.String(), "query embed refused") {
		t.Errorf("Warn log should carry the search error, got: %s", logged.String())
	}
}

func TestRectifierAvailable(t *testing.T) {
	rect := NewRectifier(NewExtractor(), nil, NewCompletionClient(&config.LLMConfig{}), NewRenderer(), t.TempDir())
	if rect.Available() {
		t.Error("Rectifier without API key should be unavailable")
	}

	rect = NewRectifier(NewExtractor(), nil, NewCompletionClient(&config.LLMConfig{APIKey: "k"}), NewRenderer(), t.TempDir())
	if !rect.Available() {
		t.Error("Rectifier with API key should be available")
	}
}
