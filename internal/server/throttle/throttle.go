// Package throttle limits repeated failed logins per subject.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/smartq/internal/common"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps backend failures. Callers may choose to fail open.
var ErrUnavailable = errors.New("throttle backend unavailable")

// Limiter tracks failed login attempts.
//
// Check returns common.ErrorTooManyAttempts once the subject has used up its
// budget for the current window. Counting does not depend on whether the
// subject exists.
type Limiter interface {
	Check(ctx context.Context, subject string) error
	Fail(ctx context.Context, subject string) error
	Reset(ctx context.Context, subject string) error
}

// Nop never limits. Used when no Redis address is configured.
type Nop struct{}

func (Nop) Check(context.Context, string) error { return nil }
func (Nop) Fail(context.Context, string) error  { return nil }
func (Nop) Reset(context.Context, string) error { return nil }

const keyPrefix = "smartq:login:fail:"

// RedisLimiter keeps a fixed-window counter per subject (INCR + EXPIRE).
type RedisLimiter struct {
	client      redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

func (l *RedisLimiter) Check(ctx context.Context, subject string) error {
	count, err := l.client.Get(ctx, keyPrefix+subject).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count >= int64(l.maxAttempts) {
		return common.ErrorTooManyAttempts
	}
	return nil
}

func (l *RedisLimiter) Fail(ctx context.Context, subject string) error {
	key := keyPrefix + subject

	// INCR and EXPIRE NX go in one MULTI so a counter never outlives its
	// window. NX keeps the window fixed from the first failure.
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, subject string) error {
	if err := l.client.Del(ctx, keyPrefix+subject).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
