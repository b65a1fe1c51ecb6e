package storage

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bujia-iot/tg-sms/pkg/errors"
)

// redisForTest 连接本地Redis的测试库，不可用时跳过
func redisForTest(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skip("Redis not available, skipping redis store tests")
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestRedisRecordStore(t *testing.T) {
	client := redisForTest(t)
	ctx := context.Background()
	store := NewRedisRecordStore(client, time.Hour)

	first := sampleRecord("100")
	second := sampleRecord("200")
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Recipient, got.Recipient)
	assert.Equal(t, first.CorrelationID, got.CorrelationID)
	require.Len(t, got.Journal, 1)
	assert.Equal(t, "Sms message sent successfully", got.Journal[0].Message)

	ttl, err := client.TTL(ctx, recordKeyPrefix+first.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)

	_, err = store.Get(ctx, "missing")
	assert.True(t, apperrors.IsErrCode(err, apperrors.ErrRecordNotFound))
}
