package dto

import "time"

type AskRequest struct {
	ThreadId string `json:"thread_id" validate:"omitempty,max=255"`
	Question string `json:"question" validate:"required,max=8000"`
}

type AnswerResponse struct {
	ThreadId  string `json:"thread_id"`
	Reasoning string `json:"reasoning"`
	Response  string `json:"response"`
}

type SourceDTO struct {
	FileName string `json:"file_name"`
	Excerpt  string `json:"excerpt"`
}

type TurnResponse struct {
	Question  string      `json:"question"`
	Reasoning string      `json:"reasoning"`
	Response  string      `json:"response"`
	Sources   []SourceDTO `json:"sources"`
	CreatedAt time.Time   `json:"created_at"`
}

type ThreadHistoryResponse struct {
	ThreadId string         `json:"thread_id"`
	Turns    []TurnResponse `json:"turns"`
}

// WsAnswerMessage is one frame sent back on the chat socket.
type WsAnswerMessage struct {
	ThreadId  string `json:"thread_id"`
	Question  string `json:"question,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
}
