package policy

import (
	"context"
	"errors"
	"testing"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/llm/llmtest"
	"docqa-be/pkg/rag"
	"docqa-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var passages = []store.Passage{
	{Text: "Paris is the capital of France.", Metadata: map[string]interface{}{"file_name": "geo.pdf"}},
}

func priorTurns(ctx []store.Passage) []store.Turn {
	return []store.Turn{{
		Question: "What is the capital of France?",
		Context:  ctx,
		Answer:   store.StructuredAnswer{Response: "Paris."},
	}}
}

func TestDecide_EmptyHistoryAlwaysRetrieves(t *testing.T) {
	fake := llmtest.Texts()
	p := New(fake, false, logger.NewNopLogger())

	d, err := p.Decide(context.Background(), "anything", nil)

	require.NoError(t, err)
	assert.True(t, d.NeedsRetrieval)
	assert.Nil(t, d.ReusedContext)
	assert.Equal(t, VerdictNone, d.Verdict)
	assert.Equal(t, 0, fake.Calls())
}

func TestDecide_CompatibilityMode(t *testing.T) {
	tests := []struct {
		name           string
		reply          string
		prior          []store.Passage
		wantRetrieval  bool
		wantReuseCount int
	}{
		{name: "yes retrieves", reply: "YES", prior: passages, wantRetrieval: true},
		{name: "lowercase padded yes retrieves", reply: "  yes \n", prior: passages, wantRetrieval: true},
		{name: "no reuses", reply: "NO", prior: passages, wantReuseCount: 1},
		{name: "garbage reuses", reply: "Maybe?", prior: passages, wantReuseCount: 1},
		{name: "yes with punctuation reuses", reply: "Yes.", prior: passages, wantReuseCount: 1},
		{name: "reasoning wrapped yes reuses", reply: "<think>hmm</think>YES", prior: passages, wantReuseCount: 1},
		{name: "no with empty prior context retrieves", reply: "NO", prior: nil, wantRetrieval: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := llmtest.Texts(tt.reply)
			p := New(fake, false, logger.NewNopLogger())

			d, err := p.Decide(context.Background(), "And its population?", priorTurns(tt.prior))

			require.NoError(t, err)
			assert.Equal(t, tt.wantRetrieval, d.NeedsRetrieval)
			assert.Len(t, d.ReusedContext, tt.wantReuseCount)
			assert.Equal(t, 1, fake.Calls())
		})
	}
}

func TestDecide_StrictMode(t *testing.T) {
	tests := []struct {
		name          string
		reply         string
		wantVerdict   Verdict
		wantRetrieval bool
	}{
		{name: "reasoning wrapped yes", reply: "<think>new topic</think>YES", wantVerdict: VerdictRetrieve, wantRetrieval: true},
		{name: "no with period", reply: "No.", wantVerdict: VerdictReuse, wantRetrieval: false},
		{name: "unparseable retrieves", reply: "I am not sure", wantVerdict: VerdictUnparseable, wantRetrieval: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(llmtest.Texts(tt.reply), true, logger.NewNopLogger())

			d, err := p.Decide(context.Background(), "q", priorTurns(passages))

			require.NoError(t, err)
			assert.Equal(t, tt.wantVerdict, d.Verdict)
			assert.Equal(t, tt.wantRetrieval, d.NeedsRetrieval)
		})
	}
}

func TestDecide_PromptCarriesTranscriptAndQuestion(t *testing.T) {
	fake := llmtest.Texts("NO")
	p := New(fake, false, logger.NewNopLogger())

	_, err := p.Decide(context.Background(), "And its population?", priorTurns(passages))
	require.NoError(t, err)

	prompt := fake.Prompts()[0]
	assert.Contains(t, prompt, "Q: What is the capital of France?\nA: Paris.")
	assert.Contains(t, prompt, "**Current Question:** And its population?")
}

func TestDecide_ReusedContextIsACopy(t *testing.T) {
	prior := store.ClonePassages(passages)
	p := New(llmtest.Texts("NO"), false, logger.NewNopLogger())

	d, err := p.Decide(context.Background(), "q", priorTurns(prior))
	require.NoError(t, err)

	d.ReusedContext[0].Text = "mutated"
	d.ReusedContext[0].Metadata["file_name"] = "mutated.pdf"

	assert.Equal(t, "Paris is the capital of France.", prior[0].Text)
	assert.Equal(t, "geo.pdf", prior[0].Source())
}

func TestDecide_ModelFailure(t *testing.T) {
	boom := errors.New("timeout")
	p := New(llmtest.New(llmtest.Reply{Err: boom}), false, logger.NewNopLogger())

	_, err := p.Decide(context.Background(), "q", priorTurns(passages))

	assert.ErrorIs(t, err, rag.ErrModelInvocation)
	assert.ErrorIs(t, err, boom)
}
