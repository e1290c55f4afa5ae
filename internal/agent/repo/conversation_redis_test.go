package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) redis.Cmdable {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestConversationRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewRedisConversationRepository(newTestRedis(t), time.Minute)

	require.NoError(t, r.AddMessage(ctx, "conv-1", schema.UserMessage("hello")))
	require.NoError(t, r.AddMessage(ctx, "conv-1", schema.AssistantMessage("hi there", nil)))

	history, err := r.LoadHistory(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, schema.User, history.Messages[0].Role)
	assert.Equal(t, "hello", history.Messages[0].Content)
	assert.Equal(t, schema.Assistant, history.Messages[1].Role)

	n, err := r.GetMessageCount(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestConversationRepositoryEmptyHistory(t *testing.T) {
	ctx := context.Background()
	r := NewRedisConversationRepository(newTestRedis(t), time.Minute)

	history, err := r.LoadHistory(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)

	n, err := r.GetMessageCount(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConversationRepositoryClearHistory(t *testing.T) {
	ctx := context.Background()
	r := NewRedisConversationRepository(newTestRedis(t), time.Minute)

	require.NoError(t, r.AddMessage(ctx, "conv-1", schema.UserMessage("hello")))
	require.NoError(t, r.ClearHistory(ctx, "conv-1"))

	history, err := r.LoadHistory(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
}

func TestConversationRepositoryOrderPreserved(t *testing.T) {
	ctx := context.Background()
	r := NewRedisConversationRepository(newTestRedis(t), 0)

	contents := []string{"one", "two", "three", "four"}
	for _, c := range contents {
		require.NoError(t, r.AddMessage(ctx, "conv-1", schema.UserMessage(c)))
	}

	history, err := r.LoadHistory(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, history.Messages, len(contents))
	for i, c := range contents {
		assert.Equal(t, c, history.Messages[i].Content)
	}
}
