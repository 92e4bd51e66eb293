package postgres

import (
	"context"
	"fmt"

	"docqa-be/internal/entity"
	"docqa-be/internal/mapper"
	"docqa-be/internal/model"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/database"
	"docqa-be/pkg/store"
	"docqa-be/pkg/vectorstore"

	"gorm.io/gorm"
)

// VectorStore keeps passages in the pgvector-backed passages table.
type VectorStore struct {
	db      *gorm.DB
	factory unitofwork.RepositoryFactory
	mapper  *mapper.PassageEmbeddingMapper
}

var _ vectorstore.Store = &VectorStore{}

func NewVectorStore(db *gorm.DB) *VectorStore {
	return &VectorStore{
		db:      db,
		factory: unitofwork.NewRepositoryFactory(db),
		mapper:  mapper.NewPassageEmbeddingMapper(),
	}
}

// EnsureCollection enables the vector extension and migrates the passages
// table. The column width is fixed, so any other dimension is rejected.
func (s *VectorStore) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return vectorstore.ErrInvalidDimension
	}
	if dimension != model.EmbeddingDimension {
		return fmt.Errorf("%w: passages.embedding_value is vector(%d), got %d",
			vectorstore.ErrDimensionMismatch, model.EmbeddingDimension, dimension)
	}

	db := s.db.WithContext(ctx)
	if err := database.EnableVector(db); err != nil {
		return fmt.Errorf("enable vector extension: %w", classify(err))
	}
	if err := db.AutoMigrate(&model.PassageEmbedding{}); err != nil {
		return fmt.Errorf("migrate passages: %w", classify(err))
	}
	return nil
}

// Upsert writes the whole batch in one transaction.
func (s *VectorStore) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	embeddings := make([]*entity.PassageEmbedding, len(records))
	for i, r := range records {
		if len(r.Vector) != model.EmbeddingDimension {
			return fmt.Errorf("%w: record %s has %d values", vectorstore.ErrDimensionMismatch, r.ID, len(r.Vector))
		}
		embeddings[i] = s.mapper.FromRecord(r)
	}

	uow := s.factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return classify(err)
	}
	if err := uow.PassageEmbeddingRepository().UpsertBulk(ctx, embeddings); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("upsert passages: %w", classify(err))
	}
	return classify(uow.Commit())
}

func (s *VectorStore) SimilaritySearch(ctx context.Context, vector []float32, k int) ([]store.Passage, error) {
	uow := s.factory.NewUnitOfWork(ctx)
	found, err := uow.PassageEmbeddingRepository().SearchSimilar(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", classify(err))
	}

	passages := make([]store.Passage, len(found))
	for i, e := range found {
		passages[i] = s.mapper.ToPassage(e)
	}
	return passages, nil
}
