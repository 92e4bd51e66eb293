package contract

import (
	"context"

	"docqa-be/internal/entity"
)

type PassageEmbeddingRepository interface {
	// UpsertBulk inserts embeddings, replacing rows that share an id.
	UpsertBulk(ctx context.Context, embeddings []*entity.PassageEmbedding) error
	// SearchSimilar orders by cosine distance, nearest first.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.PassageEmbedding, error)
}
