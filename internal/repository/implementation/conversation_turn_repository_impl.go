package implementation

import (
	"context"

	"docqa-be/internal/entity"
	"docqa-be/internal/mapper"
	"docqa-be/internal/model"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/scope"
	"docqa-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ConversationTurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationTurnMapper
}

func NewConversationTurnRepository(db *gorm.DB) contract.ConversationTurnRepository {
	return &ConversationTurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationTurnMapper(),
	}
}

func (r *ConversationTurnRepositoryImpl) Create(ctx context.Context, turn *entity.ConversationTurn) error {
	m, err := r.mapper.ToModel(turn)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	turn.Id = m.Id
	turn.CreatedAt = m.CreatedAt
	return nil
}

// FindAll returns matching turns oldest first unless a specification
// orders them otherwise.
func (r *ConversationTurnRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error) {
	var models []*model.ConversationTurn
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Scopes(scope.Chronological).Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.ConversationTurn, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *ConversationTurnRepositoryImpl) DeleteByThreadId(ctx context.Context, threadId string) error {
	return r.db.WithContext(ctx).Where("thread_id = ?", threadId).Delete(&model.ConversationTurn{}).Error
}
