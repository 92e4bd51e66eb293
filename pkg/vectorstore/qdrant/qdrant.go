package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docqa-be/pkg/store"
	"docqa-be/pkg/vectorstore"
)

const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "deep_seek_storage"

	payloadText     = "page_content"
	payloadMetadata = "metadata"
)

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// Storage is a minimal REST client to Qdrant using cosine distance.
type Storage struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

var _ vectorstore.Store = &Storage{}

func NewStorage(cfg Config) *Storage {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection when it does not exist yet.
func (s *Storage) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return vectorstore.ErrInvalidDimension
	}

	status, err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil, nil)
	if err == nil && status == http.StatusOK {
		return nil
	}
	if status != http.StatusNotFound && err != nil {
		return err
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	_, err = s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
	return err
}

func (s *Storage) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]map[string]any, len(records))
	for i, r := range records {
		points[i] = map[string]any{
			"id":     r.ID,
			"vector": r.Vector,
			"payload": map[string]any{
				payloadText:     r.Text,
				payloadMetadata: r.Metadata,
			},
		}
	}
	body := map[string]any{"points": points}
	_, err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil)
	return err
}

func (s *Storage) SimilaritySearch(ctx context.Context, vector []float32, k int) ([]store.Passage, error) {
	if k <= 0 {
		return []store.Passage{}, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}

	passages := make([]store.Passage, 0, len(resp.Result))
	for _, r := range resp.Result {
		p := store.Passage{Metadata: map[string]interface{}{}}
		if v, ok := r.Payload[payloadText].(string); ok {
			p.Text = v
		}
		if v, ok := r.Payload[payloadMetadata].(map[string]any); ok {
			p.Metadata = v
		}
		passages = append(passages, p)
	}
	return passages, nil
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

// do sends a JSON request and decodes the JSON reply into out when non-nil.
// It returns the HTTP status alongside any error.
func (s *Storage) do(ctx context.Context, method, url string, body any, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("qdrant marshal: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, string(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("qdrant decode: %w", err)
		}
	}
	return resp.StatusCode, nil
}
