package contract

import (
	"context"

	"docqa-be/internal/entity"
	"docqa-be/internal/repository/specification"
)

type ConversationTurnRepository interface {
	Create(ctx context.Context, turn *entity.ConversationTurn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error)
	DeleteByThreadId(ctx context.Context, threadId string) error
}
