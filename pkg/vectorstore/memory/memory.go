package memory

import (
	"context"
	"sort"
	"sync"

	"docqa-be/pkg/store"
	"docqa-be/pkg/vectorstore"
)

// Storage is an in-memory vector store using brute-force cosine similarity.
// Vectors are assumed L2-normalized, so similarity is a dot product.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	index     map[string]int
	records   []vectorstore.Record
}

var _ vectorstore.Store = &Storage{}

func NewStorage() *Storage {
	return &Storage{index: make(map[string]int)}
}

func (s *Storage) EnsureCollection(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return vectorstore.ErrInvalidDimension
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		s.dimension = dimension
		return nil
	}
	if s.dimension != dimension {
		return vectorstore.ErrDimensionMismatch
	}
	return nil
}

// Upsert replaces records that share an ID and appends the rest.
func (s *Storage) Upsert(_ context.Context, records []vectorstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if s.dimension != 0 && len(r.Vector) != s.dimension {
			return vectorstore.ErrDimensionMismatch
		}
	}
	for _, r := range records {
		r.Vector = append([]float32(nil), r.Vector...)
		if i, ok := s.index[r.ID]; ok {
			s.records[i] = r
			continue
		}
		s.index[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}
	return nil
}

func (s *Storage) SimilaritySearch(_ context.Context, vector []float32, k int) ([]store.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 || len(s.records) == 0 {
		return []store.Passage{}, nil
	}

	idxs := make([]int, len(s.records))
	scores := make([]float64, len(s.records))
	for i, r := range s.records {
		idxs[i] = i
		scores[i] = dot(r.Vector, vector)
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return scores[idxs[a]] > scores[idxs[b]]
	})

	if k > len(idxs) {
		k = len(idxs)
	}
	passages := make([]store.Passage, 0, k)
	for _, i := range idxs[:k] {
		r := s.records[i]
		passages = append(passages, store.ClonePassages([]store.Passage{{Text: r.Text, Metadata: r.Metadata}})[0])
	}
	return passages, nil
}

// Len returns the number of stored records.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
