package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ConversationTurn struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Seq       int64          `gorm:"autoIncrement;not null;index:idx_turns_thread_seq,priority:2"`
	ThreadId  string         `gorm:"type:varchar(255);not null;index:idx_turns_thread_seq,priority:1"`
	Question  string         `gorm:"type:text;not null"`
	Context   datatypes.JSON `gorm:"type:jsonb"`
	Reasoning string         `gorm:"type:text"`
	Response  string         `gorm:"type:text"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}
