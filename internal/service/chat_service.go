package service

import (
	"context"
	"strings"

	"docqa-be/internal/dto"
	"docqa-be/pkg/store"
)

// Conversation is the turn pipeline the chat surfaces drive.
type Conversation interface {
	HandleTurn(ctx context.Context, threadID, question string) (store.StructuredAnswer, error)
	History(ctx context.Context, threadID string) ([]store.Turn, error)
	Reset(ctx context.Context, threadID string) error
}

type IChatService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AnswerResponse, error)
	History(ctx context.Context, threadId string) (*dto.ThreadHistoryResponse, error)
	Reset(ctx context.Context, threadId string) error
}

const excerptLength = 200

type chatService struct {
	conversation Conversation
}

func NewChatService(conversation Conversation) IChatService {
	return &chatService{conversation: conversation}
}

func (c *chatService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AnswerResponse, error) {
	threadId := store.NormalizeThreadID(req.ThreadId)

	answer, err := c.conversation.HandleTurn(ctx, threadId, req.Question)
	if err != nil {
		return nil, err
	}

	return &dto.AnswerResponse{
		ThreadId:  threadId,
		Reasoning: answer.Reasoning,
		Response:  answer.Response,
	}, nil
}

func (c *chatService) History(ctx context.Context, threadId string) (*dto.ThreadHistoryResponse, error) {
	threadId = store.NormalizeThreadID(threadId)

	turns, err := c.conversation.History(ctx, threadId)
	if err != nil {
		return nil, err
	}

	res := &dto.ThreadHistoryResponse{
		ThreadId: threadId,
		Turns:    make([]dto.TurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		sources := make([]dto.SourceDTO, 0, len(t.Context))
		for _, p := range t.Context {
			sources = append(sources, dto.SourceDTO{
				FileName: p.Source(),
				Excerpt:  excerpt(p.Text),
			})
		}
		res.Turns = append(res.Turns, dto.TurnResponse{
			Question:  t.Question,
			Reasoning: t.Answer.Reasoning,
			Response:  t.Answer.Response,
			Sources:   sources,
			CreatedAt: t.CreatedAt,
		})
	}
	return res, nil
}

func (c *chatService) Reset(ctx context.Context, threadId string) error {
	return c.conversation.Reset(ctx, threadId)
}

func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= excerptLength {
		return text
	}
	return string(r[:excerptLength]) + "..."
}
