package memory

import (
	"context"
	"sync"
	"time"

	"docqa-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps thread histories in process memory. A thread
// expires after ttl without appends; nothing survives a restart.
type SessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ store.HistoryStore = &SessionRepository{}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	// purges expired items every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Load(_ context.Context, threadID string) ([]store.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, found := r.cache.Get(threadID); found {
		return store.CloneTurns(x.([]store.Turn)), nil
	}
	return []store.Turn{}, nil
}

func (r *SessionRepository) Append(_ context.Context, threadID string, turn store.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var turns []store.Turn
	if x, found := r.cache.Get(threadID); found {
		turns = x.([]store.Turn)
	}
	stored := store.CloneTurns([]store.Turn{turn})[0]
	next := make([]store.Turn, len(turns), len(turns)+1)
	copy(next, turns)
	next = append(next, stored)

	r.cache.Set(threadID, next, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Clear(_ context.Context, threadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(threadID)
	return nil
}
