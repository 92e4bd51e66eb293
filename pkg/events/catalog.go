package events

import "time"

const (
	TypeDocumentIngested = "document.ingested"
	TypeTurnCompleted    = "turn.completed"
)

// NewDocumentIngested reports a successful ingestion batch.
func NewDocumentIngested(files []string, passages int) Event {
	return newEvent(TypeDocumentIngested, map[string]interface{}{
		"files":    files,
		"passages": passages,
	})
}

// NewTurnCompleted reports an answered turn. Question and answer text stay
// out of the payload.
func NewTurnCompleted(threadID string, retrieved bool, passages int, elapsed time.Duration) Event {
	return newEvent(TypeTurnCompleted, map[string]interface{}{
		"thread_id":  threadID,
		"retrieved":  retrieved,
		"passages":   passages,
		"elapsed_ms": elapsed.Milliseconds(),
	})
}
