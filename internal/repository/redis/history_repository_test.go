package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"docqa-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "docqa:history:default_thread", key(store.DefaultThreadID))
}

func TestHistoryRepository_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	repo := NewHistoryRepository(rdb, time.Minute)
	thread := "it-" + uuid.NewString()
	t.Cleanup(func() { _ = repo.Clear(ctx, thread) })

	require.NoError(t, repo.Append(ctx, thread, store.Turn{Question: "one", Answer: store.StructuredAnswer{Response: "1"}}))
	require.NoError(t, repo.Append(ctx, thread, store.Turn{
		Question: "two",
		Context:  []store.Passage{{Text: "p", Metadata: map[string]interface{}{store.MetaFileName: "a.pdf"}}},
	}))

	turns, err := repo.Load(ctx, thread)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "one", turns[0].Question)
	assert.Equal(t, "1", turns[0].Answer.Response)
	assert.Equal(t, "a.pdf", turns[1].Context[0].Source())

	ttl, err := rdb.TTL(ctx, key(thread)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.Clear(ctx, thread))
	turns, err = repo.Load(ctx, thread)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
