package policy

import (
	"context"
	"fmt"
	"strings"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/llm"
	"docqa-be/pkg/rag"
	"docqa-be/pkg/rag/history"
	"docqa-be/pkg/rag/parser"
	"docqa-be/pkg/rag/prompt"
	"docqa-be/pkg/store"
)

// Verdict is the classified model reply to the retrieval question.
type Verdict string

const (
	VerdictNone        Verdict = ""            // no model call was made
	VerdictRetrieve    Verdict = "YES"         // fetch fresh passages
	VerdictReuse       Verdict = "NO"          // prior context is enough
	VerdictUnparseable Verdict = "UNPARSEABLE" // strict mode only
)

// Decision is the outcome of Decide. ReusedContext is set only when
// NeedsRetrieval is false.
type Decision struct {
	NeedsRetrieval bool
	ReusedContext  []store.Passage
	Verdict        Verdict
}

// Policy decides per turn whether to retrieve or reuse the last turn's context.
type Policy struct {
	llmProvider llm.LLMProvider
	strict      bool
	logger      logger.ILogger
}

// New builds a policy. In the default mode only a literal YES triggers
// retrieval and any other reply reuses prior context. In strict mode the
// reply is stripped of reasoning first, NO reuses, and anything that is
// neither YES nor NO retrieves.
func New(llmProvider llm.LLMProvider, strict bool, log logger.ILogger) *Policy {
	return &Policy{
		llmProvider: llmProvider,
		strict:      strict,
		logger:      log,
	}
}

func (p *Policy) Decide(ctx context.Context, question string, turns []store.Turn) (Decision, error) {
	if len(turns) == 0 {
		return Decision{NeedsRetrieval: true, Verdict: VerdictNone}, nil
	}

	raw, err := p.llmProvider.Generate(ctx, prompt.RetrievalDecision(history.Transcript(turns), question), llm.WithTemperature(0))
	if err != nil {
		return Decision{}, fmt.Errorf("retrieval decision: %w: %w", rag.ErrModelInvocation, err)
	}

	verdict := p.classify(raw)
	decision := Decision{Verdict: verdict}

	last := turns[len(turns)-1]
	if verdict == VerdictReuse && len(last.Context) > 0 {
		decision.ReusedContext = store.ClonePassages(last.Context)
	} else {
		decision.NeedsRetrieval = true
	}

	p.logger.Info("RetrievalPolicy", "Retrieval decided", map[string]interface{}{
		"verdict":         string(verdict),
		"raw_verdict":     raw,
		"needs_retrieval": decision.NeedsRetrieval,
		"prior_passages":  len(last.Context),
	})
	return decision, nil
}

func (p *Policy) classify(raw string) Verdict {
	if !p.strict {
		if strings.ToUpper(strings.TrimSpace(raw)) == "YES" {
			return VerdictRetrieve
		}
		return VerdictReuse
	}

	switch strings.ToUpper(strings.Trim(parser.Parse(raw).Response, " \t\r\n.!\"'")) {
	case "YES":
		return VerdictRetrieve
	case "NO":
		return VerdictReuse
	default:
		return VerdictUnparseable
	}
}
