package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateKeyPrefix = "rate:"

// fixedWindowScript counts the call and reports whether the caller is still
// inside the window limit. INCR and PEXPIRE run atomically server-side, so
// concurrent commands cannot double-start a window.
var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end

if current > tonumber(ARGV[2]) then
	return 0
end

return 1
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	result, err := fixedWindowScript.Run(ctx, r.client,
		[]string{rateKeyPrefix + key},
		window.Milliseconds(), limit,
	).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}
