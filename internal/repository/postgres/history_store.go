package postgres

import (
	"context"
	"fmt"

	"docqa-be/internal/mapper"
	"docqa-be/internal/repository/specification"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/store"

	"gorm.io/gorm"
)

// HistoryStore persists turns in the conversation_turns table so threads
// survive restarts.
type HistoryStore struct {
	factory unitofwork.RepositoryFactory
	mapper  *mapper.ConversationTurnMapper
}

var _ store.HistoryStore = &HistoryStore{}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{
		factory: unitofwork.NewRepositoryFactory(db),
		mapper:  mapper.NewConversationTurnMapper(),
	}
}

func (h *HistoryStore) Load(ctx context.Context, threadID string) ([]store.Turn, error) {
	found, err := h.factory.NewUnitOfWork(ctx).ConversationTurnRepository().
		FindAll(ctx, specification.ByThreadID{ThreadID: threadID})
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", classify(err))
	}

	turns := make([]store.Turn, len(found))
	for i, e := range found {
		turns[i] = h.mapper.ToTurn(e)
	}
	return turns, nil
}

func (h *HistoryStore) Append(ctx context.Context, threadID string, turn store.Turn) error {
	e := h.mapper.FromTurn(threadID, turn)
	if err := h.factory.NewUnitOfWork(ctx).ConversationTurnRepository().Create(ctx, e); err != nil {
		return fmt.Errorf("append turn: %w", classify(err))
	}
	return nil
}

func (h *HistoryStore) Clear(ctx context.Context, threadID string) error {
	if err := h.factory.NewUnitOfWork(ctx).ConversationTurnRepository().DeleteByThreadId(ctx, threadID); err != nil {
		return fmt.Errorf("clear turns: %w", classify(err))
	}
	return nil
}
