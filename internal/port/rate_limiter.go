package port

import (
	"context"
	"time"
)

type RateLimiter interface {
	// Allow consumes one request against the key's fixed window, returns
	// false when the limit is exhausted
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
