package vectorstore

import (
	"context"
	"errors"

	"docqa-be/pkg/store"
)

var (
	ErrInvalidDimension  = errors.New("invalid vector dimension")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Record is a passage with its embedding, ready to be upserted.
type Record struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]interface{}
}

// Store persists passage vectors and answers nearest-neighbour queries.
// SimilaritySearch returns at most k passages, most similar first.
type Store interface {
	EnsureCollection(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, records []Record) error
	SimilaritySearch(ctx context.Context, vector []float32, k int) ([]store.Passage, error)
}
