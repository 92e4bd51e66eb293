package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"docqa-be/pkg/llm"
	"docqa-be/pkg/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_ZeroRetriesReturnsNext(t *testing.T) {
	fake := llmtest.Texts("x")
	assert.Same(t, llm.LLMProvider(fake), Wrap(fake, 0, 0, nil))
}

func TestProvider_RetriesTransientErrors(t *testing.T) {
	fake := llmtest.New(
		llmtest.Reply{Err: errors.New("connection reset")},
		llmtest.Reply{Err: &llm.StatusError{Provider: "ollama", StatusCode: 503}},
		llmtest.Reply{Text: "finally"},
	)
	p := Wrap(fake, 3, time.Millisecond, nil)

	out, err := p.Generate(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "finally", out)
	assert.Equal(t, 3, fake.Calls())
}

func TestProvider_StopsOnClientError(t *testing.T) {
	fake := llmtest.New(
		llmtest.Reply{Err: &llm.StatusError{Provider: "ollama", StatusCode: 400, Body: "bad"}},
		llmtest.Reply{Text: "never"},
	)
	p := Wrap(fake, 3, time.Millisecond, nil)

	_, err := p.Generate(context.Background(), "q")

	var statusErr *llm.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 400, statusErr.StatusCode)
	assert.Equal(t, 1, fake.Calls())
}

func TestProvider_GivesUpAfterMaxRetries(t *testing.T) {
	boom := errors.New("boom")
	fake := llmtest.New(
		llmtest.Reply{Err: boom},
		llmtest.Reply{Err: boom},
		llmtest.Reply{Err: boom},
	)
	p := Wrap(fake, 1, time.Millisecond, nil)

	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "q"}})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, fake.Calls())
}
