package store

import (
	"context"
	"time"
)

// DefaultThreadID is used when a caller does not name a conversation thread.
const DefaultThreadID = "default_thread"

// Metadata keys attached to every ingested passage
const (
	MetaFileName   = "file_name"
	MetaChunkIndex = "chunk_index"
)

// Passage is a retrievable text unit produced at ingestion time
type Passage struct {
	Text     string                 `json:"page_content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Source returns the originating file name, if recorded.
func (p Passage) Source() string {
	if p.Metadata == nil {
		return ""
	}
	if name, ok := p.Metadata[MetaFileName].(string); ok {
		return name
	}
	return ""
}

// StructuredAnswer is a model reply split into its reasoning and final response
type StructuredAnswer struct {
	Reasoning string `json:"reasoning"`
	Response  string `json:"response"`
}

// Turn is one completed question/answer exchange. Turns are never mutated
// after being appended to a thread.
type Turn struct {
	Question  string           `json:"question"`
	Context   []Passage        `json:"context"`
	Answer    StructuredAnswer `json:"answer"`
	CreatedAt time.Time        `json:"created_at"`
}

// HistoryStore persists the ordered turns of each conversation thread.
// Load returns turns oldest first.
type HistoryStore interface {
	Load(ctx context.Context, threadID string) ([]Turn, error)
	Append(ctx context.Context, threadID string, turn Turn) error
	Clear(ctx context.Context, threadID string) error
}

// NormalizeThreadID maps an empty id to DefaultThreadID.
func NormalizeThreadID(threadID string) string {
	if threadID == "" {
		return DefaultThreadID
	}
	return threadID
}

// ClonePassages returns a deep copy so reused context never aliases a stored turn.
func ClonePassages(passages []Passage) []Passage {
	if passages == nil {
		return nil
	}
	out := make([]Passage, len(passages))
	for i, p := range passages {
		var meta map[string]interface{}
		if p.Metadata != nil {
			meta = make(map[string]interface{}, len(p.Metadata))
			for k, v := range p.Metadata {
				meta[k] = v
			}
		}
		out[i] = Passage{Text: p.Text, Metadata: meta}
	}
	return out
}

// CloneTurns copies a slice of turns including their context passages.
func CloneTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	for i, t := range turns {
		out[i] = t
		out[i].Context = ClonePassages(t.Context)
	}
	return out
}
