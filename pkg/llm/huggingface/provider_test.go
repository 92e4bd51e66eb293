package huggingface

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

func completionServer(t *testing.T, got *completionRequest, res string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(res))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHuggingFaceProvider_Chat(t *testing.T) {
	tests := []struct {
		name string
		res  string
		want string
	}{
		{name: "plain", res: `{"choices":[{"message":{"content":"42"}}]}`, want: "42"},
		{name: "reasoning field", res: `{"choices":[{"message":{"content":"42","reasoning_content":"count"}}]}`, want: "<think>count</think>42"},
		{name: "inline tags", res: `{"choices":[{"message":{"content":"<think>a</think>42","reasoning_content":"a"}}]}`, want: "<think>a</think>42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got completionRequest
			srv := completionServer(t, &got, tt.res, http.StatusOK)

			p := NewHuggingFaceProvider("secret", srv.URL+"/v1/", "deepseek-ai/DeepSeek-R1", 0)
			out, err := p.Chat(context.Background(), []llm.Message{{Role: "model", Content: "hi"}})

			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, "deepseek-ai/DeepSeek-R1", got.Model)
			assert.Equal(t, "assistant", got.Messages[0].Role)
			assert.Equal(t, defaultMaxTokens, got.MaxTokens)
			assert.Nil(t, got.Temperature)
		})
	}
}

func TestHuggingFaceProvider_SendsZeroTemperature(t *testing.T) {
	var got completionRequest
	srv := completionServer(t, &got, `{"choices":[{"message":{"content":"ok"}}]}`, http.StatusOK)

	_, err := NewHuggingFaceProvider("secret", srv.URL+"/v1", "m", 0).Generate(context.Background(), "q", llm.WithTemperature(0))
	require.NoError(t, err)
	require.NotNil(t, got.Temperature)
	assert.Zero(t, *got.Temperature)
}

func TestHuggingFaceProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		res    string
		status int
		check  func(t *testing.T, err error)
	}{
		{name: "status", res: "overloaded", status: http.StatusServiceUnavailable, check: func(t *testing.T, err error) {
			var statusErr *llm.StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.True(t, statusErr.Temporary())
		}},
		{name: "api error", res: `{"error":{"message":"bad model"}}`, status: http.StatusOK, check: func(t *testing.T, err error) {
			assert.ErrorContains(t, err, "bad model")
		}},
		{name: "no choices", res: `{"choices":[]}`, status: http.StatusOK, check: func(t *testing.T, err error) {
			assert.ErrorIs(t, err, errNoChoices)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, nil, tt.res, tt.status)
			_, err := NewHuggingFaceProvider("secret", srv.URL+"/v1", "m", 0).Generate(context.Background(), "q")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
