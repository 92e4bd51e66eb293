package history

import (
	"context"
	"fmt"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/llm"
	"docqa-be/pkg/rag"
	"docqa-be/pkg/rag/parser"
	"docqa-be/pkg/rag/prompt"
	"docqa-be/pkg/store"
)

// Summarizer condenses the whole conversation so far into a short summary.
// The summary is rebuilt from every turn on each call.
type Summarizer struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewSummarizer(llmProvider llm.LLMProvider, log logger.ILogger) *Summarizer {
	return &Summarizer{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Summarize returns "" without calling the model when history is empty.
func (s *Summarizer) Summarize(ctx context.Context, turns []store.Turn) (string, error) {
	if len(turns) == 0 {
		return "", nil
	}

	raw, err := s.llmProvider.Generate(ctx, prompt.Summary(Transcript(turns)))
	if err != nil {
		return "", fmt.Errorf("summarize history: %w: %w", rag.ErrModelInvocation, err)
	}

	summary := parser.Parse(raw).Response
	s.logger.Debug("Summarizer", "History summarized", map[string]interface{}{
		"turns":       len(turns),
		"summary_len": len(summary),
	})
	return summary, nil
}
