package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// EmbeddingDimension matches the all-minilm embedding model.
const EmbeddingDimension = 384

type PassageEmbedding struct {
	Id             uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Document       string            `gorm:"type:text;not null"`
	EmbeddingValue pgvector.Vector   `gorm:"type:vector(384)"`
	FileName       string            `gorm:"type:varchar(512);index"`
	ChunkIndex     int               `gorm:"default:0"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime"`
}

func (PassageEmbedding) TableName() string {
	return "passages"
}
