package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoises query embeddings so a repeated question does not
// hit the model again. Document embeddings pass straight through.
type CachedProvider struct {
	next  EmbeddingProvider
	cache *cache.Cache
}

var _ EmbeddingProvider = &CachedProvider{}

func NewCachedProvider(next EmbeddingProvider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedProvider{next: next, cache: cache.New(ttl, 2*ttl)}
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if taskType != TaskRetrievalQuery {
		return p.next.Generate(ctx, text, taskType)
	}
	if hit, ok := p.cache.Get(text); ok {
		return copyResponse(hit.(*EmbeddingResponse)), nil
	}

	res, err := p.next.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	p.cache.SetDefault(text, copyResponse(res))
	return res, nil
}

func copyResponse(r *EmbeddingResponse) *EmbeddingResponse {
	values := make([]float32, len(r.Embedding.Values))
	copy(values, r.Embedding.Values)
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: values}}
}
