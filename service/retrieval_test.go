package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/config"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		size     int
		overlap  int
		expected int
	}{
		{"empty", "", 10, 2, 0},
		{"shorter than size", "hello", 10, 2, 1},
		{"exact size", strings.Repeat("a", 10), 10, 2, 1},
		{"two chunks with overlap", strings.Repeat("a", 15), 10, 2, 2},
		{"invalid overlap disables it", strings.Repeat("a", 20), 10, 10, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.size, tt.overlap)
			if len(chunks) != tt.expected {
				t.Errorf("Expected %d chunks, got %d", tt.expected, len(chunks))
			}
		})
	}
}

func TestSplitTextOverlapContent(t *testing.T) {
	text := "abcdefghij" // 10 runes, step 4: "abcdef" then "efghij" reaches the end
	chunks := SplitText(text, 6, 2)

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "abcdef" {
		t.Errorf("Unexpected first chunk: %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "ef") {
		t.Errorf("Expected second chunk to start with overlap 'ef', got %q", chunks[1])
	}
}

// fakeEmbeddingServer returns deterministic unit vectors: each text is
// mapped onto an axis by its first byte so similarity is predictable.
func fakeEmbeddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode embedding request: %v", err)
		}

		data := make([]map[string]any, len(req.Input))
		for i, text := range req.Input {
			vec := make([]float32, 4)
			if len(text) > 0 {
				vec[int(text[0])%4] = 1
			}
			data[i] = map[string]any{"embedding": vec, "index": i}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

func TestEmbeddingClientAvailable(t *testing.T) {
	c := NewEmbeddingClient(&config.EmbeddingConfig{})
	if c.Available() {
		t.Error("Client without API key should be unavailable")
	}
	c = NewEmbeddingClient(&config.EmbeddingConfig{APIURL: "http://x", APIKey: "k"})
	if !c.Available() {
		t.Error("Configured client should be available")
	}
}

func TestBuildIndexAndSearch(t *testing.T) {
	server := fakeEmbeddingServer(t)
	defer server.Close()

	embedder := NewEmbeddingClient(&config.EmbeddingConfig{
		APIURL: server.URL,
		APIKey: "test",
		Model:  "test-model",
	})

	// Three short chunks; chunk size larger than text keeps one chunk each
	text := "alpha"
	idx, err := BuildIndex(context.Background(), embedder, text)
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}
	if idx.Len() == 0 {
		t.Fatal("Expected at least one indexed chunk")
	}

	chunks, err := idx.Search(context.Background(), "also starts with a", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(chunks) == 0 {
		t.Error("Expected at least one result")
	}
}

func TestBuildIndexUnavailableEmbedder(t *testing.T) {
	embedder := NewEmbeddingClient(&config.EmbeddingConfig{})
	if _, err := BuildIndex(context.Background(), embedder, "text"); err == nil {
		t.Error("Expected error when embedder unavailable")
	}
	if _, err := BuildIndex(context.Background(), nil, "text"); err == nil {
		t.Error("Expected error for nil embedder")
	}
}

func TestBuildIndexEmptyText(t *testing.T) {
	server := fakeEmbeddingServer(t)
	defer server.Close()

	embedder := NewEmbeddingClient(&config.EmbeddingConfig{APIURL: server.URL, APIKey: "k"})
	if _, err := BuildIndex(context.Background(), embedder, ""); err == nil {
		t.Error("Expected error for empty text")
	}
}

func TestNormalizeAndDot(t *testing.T) {
	v := normalize([]float32{3, 4})
	if d := dot(v, v); d < 0.999 || d > 1.001 {
		t.Errorf("Expected unit vector, got self-dot %f", d)
	}

	zero := normalize([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Error("Zero vector should normalize to itself")
	}
}
