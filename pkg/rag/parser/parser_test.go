package parser

import (
	"testing"

	"docqa-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want store.StructuredAnswer
	}{
		{
			name: "reasoning and response",
			raw:  "<think>look at page 2</think>The answer is 42.",
			want: store.StructuredAnswer{Reasoning: "look at page 2", Response: "The answer is 42."},
		},
		{
			name: "multiline reasoning",
			raw:  "<think>\nline one\nline two\n</think>\n\n  Final.\n",
			want: store.StructuredAnswer{Reasoning: "line one\nline two", Response: "Final."},
		},
		{
			name: "no markers",
			raw:  "  plain answer  ",
			want: store.StructuredAnswer{Reasoning: "", Response: "plain answer"},
		},
		{
			name: "only closing marker",
			raw:  "partial thought</think> answer",
			want: store.StructuredAnswer{Reasoning: "", Response: "answer"},
		},
		{
			name: "only opening marker",
			raw:  "<think>never closed",
			want: store.StructuredAnswer{Reasoning: "", Response: "<think>never closed"},
		},
		{
			name: "empty reasoning block",
			raw:  "<think></think>Yes.",
			want: store.StructuredAnswer{Reasoning: "", Response: "Yes."},
		},
		{
			name: "nested open marker stays in reasoning",
			raw:  "<think>a <think> b</think> c",
			want: store.StructuredAnswer{Reasoning: "a <think> b", Response: "c"},
		},
		{
			name: "second block belongs to response",
			raw:  "<think>one</think>mid<think>two</think>end",
			want: store.StructuredAnswer{Reasoning: "one", Response: "mid<think>two</think>end"},
		},
		{
			name: "empty input",
			raw:  "",
			want: store.StructuredAnswer{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestParseIsIdempotentOnResponse(t *testing.T) {
	inputs := []string{
		"<think>x</think>answer",
		"no markers at all",
		"<think>\n\n</think>\n  spaced  ",
	}

	for _, in := range inputs {
		first := Parse(in)
		second := Parse(first.Response)
		assert.Equal(t, "", second.Reasoning)
		assert.Equal(t, first.Response, second.Response)
	}
}

func TestWrapReasoning(t *testing.T) {
	tests := []struct {
		name      string
		reasoning string
		content   string
		want      string
	}{
		{name: "wraps separate reasoning", reasoning: " look it up ", content: "30 days.", want: "<think>look it up</think>30 days."},
		{name: "blank reasoning keeps content", reasoning: "  ", content: "30 days.", want: "30 days."},
		{name: "tagged content is left alone", reasoning: "other", content: "<think>a</think>b", want: "<think>a</think>b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapReasoning(tt.reasoning, tt.content))
		})
	}
}
