package entity

import (
	"time"

	"github.com/google/uuid"
)

type PassageEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	FileName       string
	ChunkIndex     int
	Metadata       map[string]interface{}
	CreatedAt      time.Time
}
