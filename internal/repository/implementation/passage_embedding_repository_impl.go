package implementation

import (
	"context"

	"docqa-be/internal/entity"
	"docqa-be/internal/mapper"
	"docqa-be/internal/model"
	"docqa-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 100

type PassageEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PassageEmbeddingMapper
}

func NewPassageEmbeddingRepository(db *gorm.DB) contract.PassageEmbeddingRepository {
	return &PassageEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewPassageEmbeddingMapper(),
	}
}

func (r *PassageEmbeddingRepositoryImpl) UpsertBulk(ctx context.Context, embeddings []*entity.PassageEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "embedding_value", "file_name", "chunk_index", "metadata", "updated_at"}),
		}).
		CreateInBatches(models, upsertBatchSize).Error
}

func (r *PassageEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.PassageEmbedding, error) {
	if limit <= 0 {
		return []*entity.PassageEmbedding{}, nil
	}

	var models []*model.PassageEmbedding
	err := r.db.WithContext(ctx).
		Order(clause.Expr{SQL: "embedding_value <=> ?", Vars: []interface{}{pgvector.NewVector(embedding)}}).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.PassageEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
