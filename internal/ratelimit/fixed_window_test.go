package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, limit int) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	l, err := NewFixedWindowLimiter(client, "test", limit, time.Minute)
	require.NoError(t, err)
	l.now = func() time.Time { return time.Date(2024, 12, 1, 10, 0, 30, 0, time.UTC) }
	return l, srv
}

func TestFixedWindowLimiter_Allow(t *testing.T) {
	l, _ := newLimiter(t, 2)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "10.0.0.1"))
	assert.True(t, l.Allow(ctx, "10.0.0.1"))
	assert.False(t, l.Allow(ctx, "10.0.0.1"))

	assert.True(t, l.Allow(ctx, "10.0.0.2"), "keys are counted separately")
}

func TestFixedWindowLimiter_NextWindow(t *testing.T) {
	l, _ := newLimiter(t, 1)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "ip"))
	assert.False(t, l.Allow(ctx, "ip"))

	l.now = func() time.Time { return time.Date(2024, 12, 1, 10, 1, 5, 0, time.UTC) }
	assert.True(t, l.Allow(ctx, "ip"))
}

func TestFixedWindowLimiter_KeyExpires(t *testing.T) {
	l, srv := newLimiter(t, 1)

	assert.True(t, l.Allow(context.Background(), "ip"))

	keys := srv.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, time.Minute, srv.TTL(keys[0]))
}

func TestFixedWindowLimiter_FailsClosed(t *testing.T) {
	l, srv := newLimiter(t, 5)
	srv.Close()

	assert.False(t, l.Allow(context.Background(), "ip"))
}

func TestNewFixedWindowLimiter_Invalid(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	_, err := NewFixedWindowLimiter(nil, "", 1, time.Second)
	assert.Error(t, err)
	_, err = NewFixedWindowLimiter(client, "", 0, time.Second)
	assert.Error(t, err)
	_, err = NewFixedWindowLimiter(client, "", 1, 0)
	assert.Error(t, err)
}
