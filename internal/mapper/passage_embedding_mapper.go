package mapper

import (
	"docqa-be/internal/entity"
	"docqa-be/internal/model"
	"docqa-be/pkg/store"
	"docqa-be/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type PassageEmbeddingMapper struct{}

func NewPassageEmbeddingMapper() *PassageEmbeddingMapper {
	return &PassageEmbeddingMapper{}
}

func (m *PassageEmbeddingMapper) ToEntity(e *model.PassageEmbedding) *entity.PassageEmbedding {
	if e == nil {
		return nil
	}
	return &entity.PassageEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		FileName:       e.FileName,
		ChunkIndex:     e.ChunkIndex,
		Metadata:       map[string]interface{}(e.Metadata),
		CreatedAt:      e.CreatedAt,
	}
}

func (m *PassageEmbeddingMapper) ToModel(e *entity.PassageEmbedding) *model.PassageEmbedding {
	if e == nil {
		return nil
	}
	return &model.PassageEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		FileName:       e.FileName,
		ChunkIndex:     e.ChunkIndex,
		Metadata:       datatypes.JSONMap(e.Metadata),
		CreatedAt:      e.CreatedAt,
	}
}

func (m *PassageEmbeddingMapper) ToModels(embeddings []*entity.PassageEmbedding) []*model.PassageEmbedding {
	models := make([]*model.PassageEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}

// FromRecord maps a vector store record. IDs that are not UUIDs are
// turned into a stable name-based UUID.
func (m *PassageEmbeddingMapper) FromRecord(r vectorstore.Record) *entity.PassageEmbedding {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(r.ID))
	}

	meta := make(map[string]interface{}, len(r.Metadata))
	for k, v := range r.Metadata {
		meta[k] = v
	}

	e := &entity.PassageEmbedding{
		Id:             id,
		Document:       r.Text,
		EmbeddingValue: r.Vector,
		Metadata:       meta,
	}
	if name, ok := meta[store.MetaFileName].(string); ok {
		e.FileName = name
	}
	switch idx := meta[store.MetaChunkIndex].(type) {
	case int:
		e.ChunkIndex = idx
	case float64:
		e.ChunkIndex = int(idx)
	}
	return e
}

func (m *PassageEmbeddingMapper) ToPassage(e *entity.PassageEmbedding) store.Passage {
	meta := make(map[string]interface{}, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	if _, ok := meta[store.MetaFileName]; !ok && e.FileName != "" {
		meta[store.MetaFileName] = e.FileName
	}
	return store.Passage{Text: e.Document, Metadata: meta}
}
