package retry

import (
	"context"
	"errors"
	"time"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/llm"

	"github.com/cenkalti/backoff/v5"
)

// Provider retries failed model calls with exponential backoff.
type Provider struct {
	next            llm.LLMProvider
	maxRetries      int
	initialInterval time.Duration
	logger          logger.ILogger
}

var _ llm.LLMProvider = &Provider{}

// Wrap decorates next with retries. With maxRetries <= 0 it returns next
// unchanged, so every call is attempted exactly once.
func Wrap(next llm.LLMProvider, maxRetries int, initialInterval time.Duration, log logger.ILogger) llm.LLMProvider {
	if maxRetries <= 0 {
		return next
	}
	if initialInterval <= 0 {
		initialInterval = 500 * time.Millisecond
	}
	return &Provider{
		next:            next,
		maxRetries:      maxRetries,
		initialInterval: initialInterval,
		logger:          log,
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.do(ctx, func() (string, error) {
		return p.next.Chat(ctx, history, options...)
	})
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.do(ctx, func() (string, error) {
		return p.next.Generate(ctx, prompt, options...)
	})
}

func (p *Provider) do(ctx context.Context, call func() (string, error)) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialInterval

	attempt := 0
	op := func() (string, error) {
		attempt++
		out, err := call()
		if err == nil {
			return out, nil
		}
		if !retryable(err) {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.maxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if p.logger != nil {
				p.logger.Warn("LLM", "Model call failed, retrying", map[string]interface{}{
					"attempt": attempt,
					"wait_ms": wait.Milliseconds(),
					"error":   err.Error(),
				})
			}
		}),
	)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}
