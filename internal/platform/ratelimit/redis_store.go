package ratelimit

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// redisStore implements Store using a Redis fixed window counter.
type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a Store backed by the given Redis client.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

// allowScript atomically increments the window counter and sets its
// expiry on first hit. Returns {current, ttl_ms}.
var allowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

func (s *redisStore) Allow(c echo.Context, key string, limit int, window time.Duration) (bool, int, error) {
	ctx := c.Request().Context()
	res, err := allowScript.Run(ctx, s.rdb, []string{"ratelimit:" + key}, window.Milliseconds()).Slice()
	if err != nil {
		return false, 0, err
	}
	current, _ := res[0].(int64)
	ttlMillis, _ := res[1].(int64)
	if current <= int64(limit) {
		return true, 0, nil
	}
	retryAfter := int((time.Duration(ttlMillis) * time.Millisecond).Round(time.Second) / time.Second)
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter, nil
}
