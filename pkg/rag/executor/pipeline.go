package executor

import (
	"context"
	"strings"
	"time"

	"docqa-be/internal/metrics"
	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/events"
	"docqa-be/pkg/rag"
	"docqa-be/pkg/rag/history"
	"docqa-be/pkg/rag/policy"
	"docqa-be/pkg/rag/response"
	"docqa-be/pkg/rag/search"
	"docqa-be/pkg/rag/session"
	"docqa-be/pkg/rag/state"
	"docqa-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "docqa-be/rag"

// Dependencies wires the pipeline stages. Metrics and Events may be nil.
type Dependencies struct {
	Sessions   *session.Manager
	Policy     *policy.Policy
	Retriever  *search.Retriever
	Summarizer *history.Summarizer
	Generator  *response.Generator
	Metrics    *metrics.Metrics
	Events     events.Publisher
	Logger     logger.ILogger
}

// PipelineExecutor runs one conversation turn:
// decide retrieval, retrieve or reuse, summarize, generate, append history.
type PipelineExecutor struct {
	sessions   *session.Manager
	policy     *policy.Policy
	retriever  *search.Retriever
	summarizer *history.Summarizer
	generator  *response.Generator
	states     *state.Manager
	metrics    *metrics.Metrics
	events     events.Publisher
	tracer     trace.Tracer
	logger     logger.ILogger
}

func NewPipelineExecutor(deps Dependencies) *PipelineExecutor {
	publisher := deps.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PipelineExecutor{
		sessions:   deps.Sessions,
		policy:     deps.Policy,
		retriever:  deps.Retriever,
		summarizer: deps.Summarizer,
		generator:  deps.Generator,
		states:     state.NewManager(deps.Logger),
		metrics:    deps.Metrics,
		events:     publisher,
		tracer:     otel.Tracer(tracerName),
		logger:     deps.Logger,
	}
}

// HandleTurn answers question on threadID and appends the turn to its
// history. Turns on one thread run one at a time. When any stage fails the
// history is left untouched and the stage error is returned.
func (p *PipelineExecutor) HandleTurn(ctx context.Context, threadID, question string) (store.StructuredAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return store.StructuredAnswer{}, rag.ErrEmptyQuestion
	}
	threadID = store.NormalizeThreadID(threadID)

	ctx, span := p.tracer.Start(ctx, "rag.turn", trace.WithAttributes(attribute.String("thread.id", threadID)))
	defer span.End()

	release, err := p.sessions.Acquire(ctx, threadID)
	if err != nil {
		return p.abort(span, nil, err)
	}
	defer release()

	turns, err := p.sessions.Load(ctx, threadID)
	if err != nil {
		return p.abort(span, nil, err)
	}

	st := state.NewTurnState(threadID, question, turns)
	p.logger.Info("Pipeline", "Turn started", map[string]interface{}{
		"thread_id":   threadID,
		"history_len": len(turns),
		"question":    truncate(question, 80),
	})

	if err := p.stage(ctx, st, state.StageDecideRetrieval, func(ctx context.Context) error {
		decision, err := p.policy.Decide(ctx, st.Question, st.History)
		if err != nil {
			return err
		}
		st.NeedsRetrieval = decision.NeedsRetrieval
		st.Context = decision.ReusedContext
		p.metrics.ObserveDecision(decision.NeedsRetrieval)
		return nil
	}); err != nil {
		return p.abort(span, st, err)
	}

	if err := p.stage(ctx, st, state.StageRetrieveOrReuse, func(ctx context.Context) error {
		if !st.NeedsRetrieval {
			return nil
		}
		passages, err := p.retriever.Retrieve(ctx, st.Question)
		if err != nil {
			return err
		}
		st.Context = passages
		return nil
	}); err != nil {
		return p.abort(span, st, err)
	}

	if err := p.stage(ctx, st, state.StageSummarize, func(ctx context.Context) error {
		summary, err := p.summarizer.Summarize(ctx, st.History)
		st.Summary = summary
		return err
	}); err != nil {
		return p.abort(span, st, err)
	}

	if err := p.stage(ctx, st, state.StageGenerate, func(ctx context.Context) error {
		answer, err := p.generator.Generate(ctx, st.Question, st.Context, st.Summary)
		st.Answer = answer
		return err
	}); err != nil {
		return p.abort(span, st, err)
	}

	if err := p.stage(ctx, st, state.StageAppendHistory, func(ctx context.Context) error {
		return p.sessions.Append(ctx, st.ThreadID, st.Turn())
	}); err != nil {
		return p.abort(span, st, err)
	}

	p.states.Transition(st, state.StageDone)
	p.metrics.ObserveTurn("ok")
	span.SetAttributes(
		attribute.Bool("rag.retrieved", st.NeedsRetrieval),
		attribute.Int("rag.passages", len(st.Context)),
	)
	p.logger.Info("Pipeline", "Turn completed", map[string]interface{}{
		"thread_id":  threadID,
		"retrieved":  st.NeedsRetrieval,
		"passages":   len(st.Context),
		"elapsed_ms": st.Elapsed().Milliseconds(),
	})

	event := events.NewTurnCompleted(threadID, st.NeedsRetrieval, len(st.Context), st.Elapsed())
	if err := p.events.Publish(ctx, event); err != nil {
		p.logger.Warn("Pipeline", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}
	return st.Answer, nil
}

// History returns the thread's turns, oldest first.
func (p *PipelineExecutor) History(ctx context.Context, threadID string) ([]store.Turn, error) {
	return p.sessions.Load(ctx, threadID)
}

// Reset drops the thread's history.
func (p *PipelineExecutor) Reset(ctx context.Context, threadID string) error {
	if err := p.sessions.Clear(ctx, threadID); err != nil {
		return err
	}
	p.logger.Info("Pipeline", "Thread cleared", map[string]interface{}{"thread_id": store.NormalizeThreadID(threadID)})
	return nil
}

func (p *PipelineExecutor) stage(ctx context.Context, st *state.TurnState, next state.Stage, fn func(ctx context.Context) error) error {
	p.states.Transition(st, next)

	ctx, span := p.tracer.Start(ctx, "rag."+strings.ToLower(string(next)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.metrics.ObserveStage(string(next), time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (p *PipelineExecutor) abort(span trace.Span, st *state.TurnState, err error) (store.StructuredAnswer, error) {
	if st != nil {
		p.states.Fail(st, err)
	} else {
		p.logger.Error("Pipeline", "Turn aborted before start", map[string]interface{}{"error": err.Error()})
	}
	p.metrics.ObserveTurn("failed")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return store.StructuredAnswer{}, err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
