package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Generate(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   got.Model,
			Message: ollamaMessage{Role: "assistant", Content: "<think>hm</think>hello"},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "", 0)
	out, err := p.Generate(context.Background(), "hi", llm.WithTemperature(0), llm.WithMaxTokens(64))

	require.NoError(t, err)
	assert.Equal(t, "<think>hm</think>hello", out)
	assert.Equal(t, DefaultModel, got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[0].Content)
	require.NotNil(t, got.Options)
	assert.Equal(t, 64, got.Options.NumPredict)
}

func TestOllamaProvider_MapsModelRole(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Content: "ok"}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "m", 0)
	_, err := p.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "a"},
		{Role: "model", Content: "b"},
	}, llm.WithModel("override"))

	require.NoError(t, err)
	assert.Equal(t, "override", got.Model)
	assert.Equal(t, "assistant", got.Messages[1].Role)
}

func TestOllamaProvider_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "missing", 0)
	_, err := p.Generate(context.Background(), "hi")

	var statusErr *llm.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.False(t, statusErr.Temporary())
}

func TestOllamaProvider_FoldsThinkingField(t *testing.T) {
	tests := []struct {
		name    string
		message ollamaMessage
		want    string
	}{
		{name: "separate thinking", message: ollamaMessage{Thinking: " weigh it ", Content: "42"}, want: "<think>weigh it</think>42"},
		{name: "inline tags win", message: ollamaMessage{Thinking: "dup", Content: "<think>x</think>42"}, want: "<think>x</think>42"},
		{name: "no thinking", message: ollamaMessage{Content: "42"}, want: "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: tt.message, Done: true})
			}))
			defer srv.Close()

			out, err := NewOllamaProvider(srv.URL+"/", "m", 0).Generate(context.Background(), "q")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}
