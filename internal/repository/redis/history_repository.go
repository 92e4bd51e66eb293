package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docqa-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "docqa:history:"

// HistoryRepository keeps each thread as a Redis list of JSON turns,
// oldest at the head. Appends refresh the thread's expiry.
type HistoryRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ store.HistoryStore = &HistoryRepository{}

func NewHistoryRepository(rdb *redis.Client, ttl time.Duration) *HistoryRepository {
	return &HistoryRepository{rdb: rdb, ttl: ttl}
}

func key(threadID string) string {
	return keyPrefix + threadID
}

func (r *HistoryRepository) Load(ctx context.Context, threadID string) ([]store.Turn, error) {
	raw, err := r.rdb.LRange(ctx, key(threadID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	turns := make([]store.Turn, 0, len(raw))
	for i, item := range raw {
		var t store.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("decode turn %d of %s: %w", i, threadID, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (r *HistoryRepository) Append(ctx context.Context, threadID string, turn store.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key(threadID), data)
	if r.ttl > 0 {
		pipe.Expire(ctx, key(threadID), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Clear(ctx context.Context, threadID string) error {
	if err := r.rdb.Del(ctx, key(threadID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
