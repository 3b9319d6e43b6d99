package ratelimit

import (
	"context"
	"time"
)

// Limiter bounds the rate of security-sensitive actions per scope and
// client identity using fixed time windows.
type Limiter interface {
	// Allow admits or denies one attempt for key within a window of the
	// given size holding at most max attempts.
	Allow(ctx context.Context, key string, max int, window time.Duration) (bool, error)
	// RetryAfter reports how long until the key's window resets, for
	// Retry-After hints. Zero when the key is unknown.
	RetryAfter(ctx context.Context, key string) time.Duration
}

// Key builds the canonical "{scope}:{identity}" counter key.
func Key(scope, identity string) string {
	return scope + ":" + identity
}
