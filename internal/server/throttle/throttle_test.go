package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/smartq/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, max int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, max, window), mr
}

func TestRedisLimiter_BlocksAfterMaxFailures(t *testing.T) {
	l, _ := newLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Check(ctx, "ada@example.com"), "attempt %d", i)
		require.NoError(t, l.Fail(ctx, "ada@example.com"))
	}
	assert.ErrorIs(t, l.Check(ctx, "ada@example.com"), common.ErrorTooManyAttempts)

	// other subjects are unaffected
	assert.NoError(t, l.Check(ctx, "bob@example.com"))
}

func TestRedisLimiter_WindowExpires(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.Fail(ctx, "s"))
	assert.ErrorIs(t, l.Check(ctx, "s"), common.ErrorTooManyAttempts)
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"s"))

	// later failures keep the original window
	mr.FastForward(30 * time.Second)
	require.NoError(t, l.Fail(ctx, "s"))
	assert.Equal(t, 30*time.Second, mr.TTL(keyPrefix+"s"))

	mr.FastForward(31 * time.Second)
	assert.NoError(t, l.Check(ctx, "s"))
}

func TestRedisLimiter_Reset(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.Fail(ctx, "s"))
	require.NoError(t, l.Reset(ctx, "s"))
	assert.False(t, mr.Exists(keyPrefix+"s"))
	assert.NoError(t, l.Check(ctx, "s"))
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	mr.Close()
	ctx := context.Background()

	assert.ErrorIs(t, l.Check(ctx, "s"), ErrUnavailable)
	assert.ErrorIs(t, l.Fail(ctx, "s"), ErrUnavailable)
	assert.ErrorIs(t, l.Reset(ctx, "s"), ErrUnavailable)
}

func TestNop(t *testing.T) {
	var l Limiter = Nop{}
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Fail(ctx, "s"))
	}
	assert.NoError(t, l.Check(ctx, "s"))
	assert.NoError(t, l.Reset(ctx, "s"))
}

func TestRedisLimiter_FailRestoresMissingTTL(t *testing.T) {
	l, mr := newLimiter(t, 5, time.Minute)
	ctx := context.Background()

	// counter left behind without a TTL
	require.NoError(t, mr.Set(keyPrefix+"s", "3"))
	require.Equal(t, time.Duration(0), mr.TTL(keyPrefix+"s"))

	require.NoError(t, l.Fail(ctx, "s"))
	v, err := mr.Get(keyPrefix + "s")
	require.NoError(t, err)
	assert.Equal(t, "4", v)
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"s"))
}
