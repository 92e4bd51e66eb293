package mapper

import (
	"encoding/json"
	"fmt"

	"docqa-be/internal/entity"
	"docqa-be/internal/model"
	"docqa-be/pkg/store"

	"gorm.io/datatypes"
)

type ConversationTurnMapper struct{}

func NewConversationTurnMapper() *ConversationTurnMapper {
	return &ConversationTurnMapper{}
}

func (m *ConversationTurnMapper) ToEntity(t *model.ConversationTurn) (*entity.ConversationTurn, error) {
	if t == nil {
		return nil, nil
	}
	passages := []store.Passage{}
	if len(t.Context) > 0 {
		if err := json.Unmarshal(t.Context, &passages); err != nil {
			return nil, fmt.Errorf("decode turn context: %w", err)
		}
	}
	return &entity.ConversationTurn{
		Id:        t.Id,
		ThreadId:  t.ThreadId,
		Question:  t.Question,
		Context:   passages,
		Reasoning: t.Reasoning,
		Response:  t.Response,
		CreatedAt: t.CreatedAt,
	}, nil
}

func (m *ConversationTurnMapper) ToModel(e *entity.ConversationTurn) (*model.ConversationTurn, error) {
	if e == nil {
		return nil, nil
	}
	passages := e.Context
	if passages == nil {
		passages = []store.Passage{}
	}
	raw, err := json.Marshal(passages)
	if err != nil {
		return nil, fmt.Errorf("encode turn context: %w", err)
	}
	return &model.ConversationTurn{
		Id:        e.Id,
		ThreadId:  e.ThreadId,
		Question:  e.Question,
		Context:   datatypes.JSON(raw),
		Reasoning: e.Reasoning,
		Response:  e.Response,
		CreatedAt: e.CreatedAt,
	}, nil
}

func (m *ConversationTurnMapper) FromTurn(threadID string, t store.Turn) *entity.ConversationTurn {
	return &entity.ConversationTurn{
		ThreadId:  threadID,
		Question:  t.Question,
		Context:   store.ClonePassages(t.Context),
		Reasoning: t.Answer.Reasoning,
		Response:  t.Answer.Response,
		CreatedAt: t.CreatedAt,
	}
}

func (m *ConversationTurnMapper) ToTurn(e *entity.ConversationTurn) store.Turn {
	return store.Turn{
		Question: e.Question,
		Context:  e.Context,
		Answer: store.StructuredAnswer{
			Reasoning: e.Reasoning,
			Response:  e.Response,
		},
		CreatedAt: e.CreatedAt,
	}
}
