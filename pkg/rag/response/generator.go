package response

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

// Generator answers a question from passages plus the conversation summary.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Generate makes exactly one model call and parses its reply.
func (g *Generator) Generate(ctx context.Context, question string, passages []store.Passage, summary string) (store.StructuredAnswer, error) {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	raw, err := g.llmProvider.Generate(ctx, prompt.GroundedAnswer(prompt.CombinedContext(summary, texts), question))
	if err != nil {
		return store.StructuredAnswer{}, fmt.Errorf("generate answer: %w: %w", rag.ErrModelInvocation, err)
	}

	answer := parser.Parse(raw)
	g.logger.Debug("Generator", "Answer generated", map[string]interface{}{
		"passages":      len(passages),
		"has_reasoning": answer.Reasoning != "",
	})
	return answer, nil
}
