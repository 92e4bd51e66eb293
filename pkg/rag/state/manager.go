package state

import (
	"time"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/store"
)

// Stage is a step of the turn pipeline.
type Stage string

const (
	StageStart           Stage = "START"
	StageDecideRetrieval Stage = "DECIDE_RETRIEVAL"
	StageRetrieveOrReuse Stage = "RETRIEVE_OR_REUSE"
	StageSummarize       Stage = "SUMMARIZE"
	StageGenerate        Stage = "GENERATE"
	StageAppendHistory   Stage = "APPEND_HISTORY"
	StageDone            Stage = "DONE"
	StageFailed          Stage = "FAILED"
)

// TurnState is the in-flight state of one turn. NeedsRetrieval and Summary
// live only here and are never persisted.
type TurnState struct {
	ThreadID       string
	Question       string
	History        []store.Turn
	NeedsRetrieval bool
	Context        []store.Passage
	Summary        string
	Answer         store.StructuredAnswer
	Stage          Stage

	startedAt time.Time
	enteredAt time.Time
}

// NewTurnState starts a turn over a snapshot of the thread history.
func NewTurnState(threadID, question string, history []store.Turn) *TurnState {
	now := time.Now()
	return &TurnState{
		ThreadID:  threadID,
		Question:  question,
		History:   history,
		Stage:     StageStart,
		startedAt: now,
		enteredAt: now,
	}
}

// Turn is the history record produced by a completed state.
func (s *TurnState) Turn() store.Turn {
	return store.Turn{
		Question:  s.Question,
		Context:   s.Context,
		Answer:    s.Answer,
		CreatedAt: time.Now().UTC(),
	}
}

// Elapsed is the time since the turn started.
func (s *TurnState) Elapsed() time.Duration {
	return time.Since(s.startedAt)
}

// Manager moves turn state between stages and logs every transition.
type Manager struct {
	logger logger.ILogger
}

func NewManager(log logger.ILogger) *Manager {
	return &Manager{logger: log}
}

// Transition enters next and returns how long the previous stage took.
func (m *Manager) Transition(s *TurnState, next Stage) time.Duration {
	now := time.Now()
	spent := now.Sub(s.enteredAt)
	prev := s.Stage

	s.Stage = next
	s.enteredAt = now

	m.logger.Info("TurnState", "Stage transition", map[string]interface{}{
		"thread_id": s.ThreadID,
		"from":      string(prev),
		"to":        string(next),
		"spent_ms":  spent.Milliseconds(),
	})
	return spent
}

// Fail marks the turn failed at its current stage.
func (m *Manager) Fail(s *TurnState, err error) {
	m.logger.Error("TurnState", "Turn aborted", map[string]interface{}{
		"thread_id": s.ThreadID,
		"stage":     string(s.Stage),
		"error":     err.Error(),
	})
	s.Stage = StageFailed
}
