package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"docqa-be/pkg/llm"
)

const (
	DefaultOllamaEmbeddingModel = "all-minilm"
	DefaultDimension            = 384
)

var ErrEmptyEmbedding = errors.New("embedding: empty vector")

// OllamaProvider embeds text with a local Ollama embedding model. Vectors
// are returned L2-normalised.
type OllamaProvider struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

var _ EmbeddingProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultOllamaEmbeddingModel
	}
	return &OllamaProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Generate ignores taskType; Ollama embedding models take no task hint.
func (p *OllamaProvider) Generate(ctx context.Context, text string, _ string) (*EmbeddingResponse, error) {
	payload, err := json.Marshal(embedRequest{Model: p.Model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &llm.StatusError{Provider: "ollama-embedding", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var res embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("%w from model %s", ErrEmptyEmbedding, p.Model)
	}

	values := make([]float32, len(res.Embedding))
	for i, v := range res.Embedding {
		values[i] = float32(v)
	}
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: Normalize(values)}}, nil
}

// Normalize scales vec to unit length. A zero vector is returned as is.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
