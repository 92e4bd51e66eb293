package unitofwork

import (
	"context"

	"docqa-be/internal/repository/contract"
)

// RepositoryFactory hands out units of work bound to one database.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// UnitOfWork groups repository calls, optionally inside a transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PassageEmbeddingRepository() contract.PassageEmbeddingRepository
	ConversationTurnRepository() contract.ConversationTurnRepository
}
