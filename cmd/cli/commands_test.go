package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docqa-be/internal/bootstrap"
	"docqa-be/internal/config"
	"docqa-be/internal/dto"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedChat struct {
	questions []string
	resets    int
	fail      map[string]error
}

func (s *scriptedChat) Ask(_ context.Context, req *dto.AskRequest) (*dto.AnswerResponse, error) {
	s.questions = append(s.questions, req.Question)
	if err := s.fail[req.Question]; err != nil {
		return nil, err
	}
	return &dto.AnswerResponse{ThreadId: req.ThreadId, Reasoning: "thinking about " + req.Question, Response: "answer to " + req.Question}, nil
}

func (s *scriptedChat) History(context.Context, string) (*dto.ThreadHistoryResponse, error) {
	return &dto.ThreadHistoryResponse{}, nil
}

func (s *scriptedChat) Reset(context.Context, string) error {
	s.resets++
	return nil
}

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestChatLoop(t *testing.T) {
	chat := &scriptedChat{fail: map[string]error{"broken": errors.New("model unreachable")}}
	in := strings.NewReader("first\n\n/reset\nbroken\nsecond\n/exit\nnever asked\n")
	var out bytes.Buffer

	require.NoError(t, chatLoop(context.Background(), in, &out, "t", chat))

	assert.Equal(t, []string{"first", "broken", "second"}, chat.questions)
	assert.Equal(t, 1, chat.resets)
	assert.Contains(t, out.String(), "answer to first")
	assert.Contains(t, out.String(), "error: model unreachable")
	assert.Contains(t, out.String(), "conversation cleared")
	assert.NotContains(t, out.String(), "never asked")
}

func TestChatLoop_StopsAtEOF(t *testing.T) {
	chat := &scriptedChat{}
	var out bytes.Buffer

	require.NoError(t, chatLoop(context.Background(), strings.NewReader("only\n"), &out, "", chat))
	assert.Equal(t, []string{"only"}, chat.questions)
}

func TestPrintAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer dto.AnswerResponse
		want   string
	}{
		{name: "with reasoning", answer: dto.AnswerResponse{Reasoning: " why ", Response: "what"}, want: "Reasoning\nwhy\n\nAnswer\nwhat\n"},
		{name: "without reasoning", answer: dto.AnswerResponse{Response: "what"}, want: "Answer\nwhat\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printAnswer(&out, &tt.answer)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/embeddings":
			_, _ = io.WriteString(w, `{"embedding":[1,0]}`)
		case "/api/chat":
			_, _ = io.WriteString(w, `{"model":"m","message":{"role":"assistant","content":"<think>check terms</think>30 days."},"done":true}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWithContainer_KeepsLogsOffStdout(t *testing.T) {
	srv := fakeOllama(t)
	logPath := filepath.Join(t.TempDir(), "docqa.log")
	cfg := &config.Config{
		App: config.AppConfig{LogFilePath: logPath, Environment: "development"},
		Ai: config.AIConfig{
			LLMProvider:       "ollama",
			LLMModel:          "m",
			LLMBaseURL:        srv.URL,
			LLMTimeout:        5 * time.Second,
			EmbeddingProvider: "ollama",
			OllamaBaseURL:     srv.URL,
			OllamaModel:       "e",
		},
		VectorStore: config.VectorStoreConfig{Driver: "memory"},
		History:     config.HistoryConfig{Store: "memory", TTL: time.Hour},
		Rag:         config.RAGConfig{TopK: 3},
	}

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	captured := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		captured <- string(b)
	}()

	var out bytes.Buffer
	err = withContainer(cfg, func(ctx context.Context, c *bootstrap.Container) error {
		return chatLoop(ctx, strings.NewReader("When are invoices due?\n"), &out, "t", c.ChatService)
	})
	os.Stdout = stdout
	require.NoError(t, w.Close())
	leaked := <-captured

	require.NoError(t, err)
	assert.Empty(t, leaked)
	assert.Contains(t, out.String(), "Answer\n30 days.")

	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "LLM provider ready")
}
