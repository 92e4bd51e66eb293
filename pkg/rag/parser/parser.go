package parser

import (
	"regexp"
	"strings"

	"docqa-be/pkg/store"
)

const (
	ThinkOpen  = "<think>"
	ThinkClose = "</think>"
)

var (
	reasoningPattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)
	responsePattern  = regexp.MustCompile(`(?s)</think>\s*(.*)$`)
)

// Parse splits raw model output into reasoning and response.
//
// Reasoning is the trimmed interior of the first <think>...</think> block.
// Response is everything after the first </think>, trimmed; without a closing
// marker the whole trimmed text is the response. Parse never fails.
func Parse(raw string) store.StructuredAnswer {
	var answer store.StructuredAnswer

	if m := reasoningPattern.FindStringSubmatch(raw); m != nil {
		answer.Reasoning = strings.TrimSpace(m[1])
	}

	if m := responsePattern.FindStringSubmatch(raw); m != nil {
		answer.Response = strings.TrimSpace(m[1])
	} else {
		answer.Response = strings.TrimSpace(raw)
	}

	return answer
}

// WrapReasoning prefixes content with a reasoning block for providers that
// return the chain of thought in a separate field. Content that already
// carries an opening marker is left alone.
func WrapReasoning(reasoning, content string) string {
	reasoning = strings.TrimSpace(reasoning)
	if reasoning == "" || strings.Contains(content, ThinkOpen) {
		return content
	}
	return ThinkOpen + reasoning + ThinkClose + content
}
