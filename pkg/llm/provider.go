package llm

import (
	"context"
	"fmt"
	"net/http"
)

// Chat roles understood by every backend. Backends translate "model" to
// RoleAssistant.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are per-call overrides. Zero values leave the backend default.
type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

type Option func(*Options)

func WithTemperature(temp float64) Option {
	return func(o *Options) { o.Temperature = temp }
}

func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// LLMProvider is a chat model backend. Replies are returned raw, including
// any <think> reasoning block.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends prompt as a single user message.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// StatusError is returned by HTTP backends when the server answers with a
// non-200 status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports whether retrying the request could succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
