package search

import (
	"context"
	"fmt"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/rag"
	"docqa-be/pkg/store"
	"docqa-be/pkg/vectorstore"
)

// DefaultTopK is the number of passages fetched per retrieval.
const DefaultTopK = 3

// Retriever embeds a query and returns the nearest passages from the store.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	vectorStore       vectorstore.Store
	topK              int
	logger            logger.ILogger
}

func NewRetriever(embeddingProvider embedding.EmbeddingProvider, vectorStore vectorstore.Store, topK int, log logger.ILogger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embeddingProvider: embeddingProvider,
		vectorStore:       vectorStore,
		topK:              topK,
		logger:            log,
	}
}

// Retrieve returns at most topK passages in store ranking order. A store
// with fewer passages yields fewer results; an empty store yields none.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]store.Passage, error) {
	embeddingRes, err := r.embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w: %w", rag.ErrRetrieval, err)
	}

	passages, err := r.vectorStore.SimilaritySearch(ctx, embeddingRes.Embedding.Values, r.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w: %w", rag.ErrRetrieval, err)
	}

	r.logger.Info("Retriever", "Passages retrieved", map[string]interface{}{
		"top_k":    r.topK,
		"returned": len(passages),
	})
	return passages, nil
}
