package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getTestRedis connects to a local Redis or skips the test.
func getTestRedis(t *testing.T) *Redis {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	prefix := "test:housing:" + uuid.NewString() + ":"
	r := NewRedisWithClient(client, prefix, time.Minute)
	t.Cleanup(func() {
		_ = r.Invalidate(context.Background(), "")
		_ = r.Close()
	})
	return r
}

func TestRedis_GetPut(t *testing.T) {
	r := getTestRedis(t)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "home-value/all")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Put(ctx, "home-value/all", []byte(`{"title":"x"}`)))
	got, ok, err := r.Get(ctx, "home-value/all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"title":"x"}`, string(got))
}

func TestRedis_InvalidateAndStats(t *testing.T) {
	r := getTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "forecast/a", []byte("1")))
	require.NoError(t, r.Put(ctx, "forecast/b", []byte("2")))
	require.NoError(t, r.Put(ctx, "rent-index/a", []byte("3")))

	require.NoError(t, r.Invalidate(ctx, "forecast"))
	s, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, s.Driver)
	assert.Equal(t, 1, s.Entries)
}

func TestNewRedis_EmptyAddr(t *testing.T) {
	_, err := NewRedis(context.Background(), Options{Driver: DriverRedis})
	assert.Error(t, err)
}
