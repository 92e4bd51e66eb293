package search

import (
	"context"
	"errors"
	"testing"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/rag"
	"docqa-be/pkg/store"
	"docqa-be/pkg/vectorstore"
	"docqa-be/pkg/vectorstore/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vec      []float32
	err      error
	lastTask string
}

func (s *stubEmbedder) Generate(_ context.Context, _ string, taskType string) (*embedding.EmbeddingResponse, error) {
	s.lastTask = taskType
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: s.vec}}, nil
}

type failingStore struct{ err error }

func (f failingStore) EnsureCollection(context.Context, int) error       { return nil }
func (f failingStore) Upsert(context.Context, []vectorstore.Record) error { return nil }
func (f failingStore) SimilaritySearch(context.Context, []float32, int) ([]store.Passage, error) {
	return nil, f.err
}

func seeded(t *testing.T, n int) *memory.Storage {
	t.Helper()
	s := memory.NewStorage()
	records := make([]vectorstore.Record, n)
	for i := 0; i < n; i++ {
		records[i] = vectorstore.Record{
			ID:     string(rune('a' + i)),
			Vector: []float32{float32(n - i), 1},
			Text:   string(rune('A' + i)),
		}
	}
	require.NoError(t, s.Upsert(context.Background(), records))
	return s
}

func TestRetriever_ReturnsTopK(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{1, 0}}
	r := NewRetriever(emb, seeded(t, 5), 0, logger.NewNopLogger())

	got, err := r.Retrieve(context.Background(), "question")

	require.NoError(t, err)
	require.Len(t, got, DefaultTopK)
	assert.Equal(t, "A", got[0].Text)
	assert.Equal(t, embedding.TaskRetrievalQuery, emb.lastTask)
}

func TestRetriever_SmallAndEmptyCorpus(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{1, 0}}

	got, err := NewRetriever(emb, seeded(t, 2), 3, logger.NewNopLogger()).Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = NewRetriever(emb, memory.NewStorage(), 3, logger.NewNopLogger()).Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetriever_Failures(t *testing.T) {
	boom := errors.New("unreachable")

	_, err := NewRetriever(&stubEmbedder{err: boom}, memory.NewStorage(), 3, logger.NewNopLogger()).Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, rag.ErrRetrieval)
	assert.ErrorIs(t, err, boom)

	_, err = NewRetriever(&stubEmbedder{vec: []float32{1}}, failingStore{err: boom}, 3, logger.NewNopLogger()).Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, rag.ErrRetrieval)
	assert.ErrorIs(t, err, boom)
}
