// Package llmtest provides a scripted LLMProvider for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"docqa-be/pkg/llm"
)

// Reply is one scripted model answer.
type Reply struct {
	Text string
	Err  error
}

// Fake returns scripted replies in order and records every prompt it sees.
// When the script is exhausted it returns ErrExhausted.
type Fake struct {
	mu      sync.Mutex
	replies []Reply
	prompts []string
}

var ErrExhausted = errors.New("llmtest: no scripted reply left")

var _ llm.LLMProvider = &Fake{}

func New(replies ...Reply) *Fake {
	return &Fake{replies: replies}
}

// Texts is shorthand for a script of successful replies.
func Texts(texts ...string) *Fake {
	replies := make([]Reply, len(texts))
	for i, t := range texts {
		replies[i] = Reply{Text: t}
	}
	return New(replies...)
}

func (f *Fake) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var prompt string
	if len(history) > 0 {
		prompt = history[len(history)-1].Content
	}
	f.prompts = append(f.prompts, prompt)

	if len(f.replies) == 0 {
		return "", ErrExhausted
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.Text, r.Err
}

func (f *Fake) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// Prompts returns the prompts received so far.
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

// Calls returns the number of model invocations.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
