package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// fixedWindowScript admits a call when the counter is below ARGV[1]. The key
// expires ARGV[2] milliseconds after the first call of the window. Returns
// {allowed, count, pttl}.
var fixedWindowScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local limit = tonumber(ARGV[1])
if current >= limit then
  local ttl = redis.call("PTTL", KEYS[1])
  if ttl < 0 then
    redis.call("PEXPIRE", KEYS[1], ARGV[2])
    ttl = tonumber(ARGV[2])
  end
  return {0, current, ttl}
end
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
  ttl = tonumber(ARGV[2])
end
return {1, count, ttl}
`)

// Redis is a fixed-window limiter shared by every API replica.
type Redis struct {
	client   redis.Scripter
	prefix   string
	interval time.Duration
	clock    clockwork.Clock
}

func NewRedis(client redis.Scripter, prefix string, interval time.Duration, clock clockwork.Clock) *Redis {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Redis{client: client, prefix: prefix, interval: interval, clock: clock}
}

// Check records one call for token and reports whether it is within limit.
func (r *Redis) Check(ctx context.Context, limit int, token string) (domain.RateLimitDecision, error) {
	if limit <= 0 {
		return domain.RateLimitDecision{Limit: limit, ResetAt: r.clock.Now().Add(r.interval)}, nil
	}
	res, err := fixedWindowScript.Run(ctx, r.client, []string{r.prefix + token}, limit, r.interval.Milliseconds()).Int64Slice()
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("ratelimit: run script: %w", err)
	}
	if len(res) != 3 {
		return domain.RateLimitDecision{}, fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}
	e := domain.RateLimitEntry{
		Token:         token,
		Count:         int(res[1]),
		WindowResetAt: r.clock.Now().Add(time.Duration(res[2]) * time.Millisecond),
	}
	return decision(res[0] == 1, limit, e), nil
}
