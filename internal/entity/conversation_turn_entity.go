package entity

import (
	"time"

	"docqa-be/pkg/store"

	"github.com/google/uuid"
)

type ConversationTurn struct {
	Id        uuid.UUID
	ThreadId  string
	Question  string
	Context   []store.Passage
	Reasoning string
	Response  string
	CreatedAt time.Time
}
