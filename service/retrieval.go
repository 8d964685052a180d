package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/config"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// SplitText splits text into overlapping character chunks for indexing.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = chunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// EmbeddingClient calls an OpenAI-compatible embeddings endpoint. Like
// the completion client it is an optional capability.
type EmbeddingClient struct {
	config     *config.EmbeddingConfig
	httpClient *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewEmbeddingClient(cfg *config.EmbeddingConfig) *EmbeddingClient {
	return &EmbeddingClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Available reports whether the embeddings endpoint can be called.
func (c *EmbeddingClient) Available() bool {
	return c.config.APIKey != "" && c.config.APIURL != ""
}

// Embed returns one vector per input text.
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.Available() {
		return nil, fmt.Errorf("embedding API not configured")
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	jsonData, err := json.Marshal(embeddingRequest{Input: texts, Model: c.config.Model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result embeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("embedding API error: %s", result.Error.Message)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d texts", len(result.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding API returned out-of-range index %d", d.Index)
		}
		vectors[d.Index] = normalize(d.Embedding)
	}
	return vectors, nil
}

// Index is an in-memory vector index over one document's chunks.
// Vectors are normalized on insert so dot product equals cosine
// similarity; at this scale brute force is exact and fast.
type Index struct {
	chunks   []string
	vectors  [][]float32
	embedder *EmbeddingClient
}

// BuildIndex chunks and embeds text. Returns an error when the
// embedding collaborator is unavailable or fails; callers degrade to
// retrieval-free behavior.
func BuildIndex(ctx context.Context, embedder *EmbeddingClient, text string) (*Index, error) {
	if embedder == nil || !embedder.Available() {
		return nil, fmt.Errorf("semantic retrieval unavailable")
	}
	chunks := SplitText(text, chunkSize, chunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text to index")
	}

	vectors, err := embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	return &Index{chunks: chunks, vectors: vectors, embedder: embedder}, nil
}

// Search returns the top-k chunks by cosine similarity to the query.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = 4
	}
	qvecs, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	qv := qvecs[0]

	type scored struct {
		i     int
		score float32
	}
	results := make([]scored, 0, len(idx.vectors))
	for i, v := range idx.vectors {
		if len(v) != len(qv) {
			continue
		}
		results = append(results, scored{i: i, score: dot(qv, v)})
	}
	sort.Slice(results, func(a, b int) bool { return results[a].score > results[b].score })

	if k > len(results) {
		k = len(results)
	}
	top := make([]string, 0, k)
	for _, r := range results[:k] {
		top = append(top, idx.chunks[r.i])
	}
	return top, nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
