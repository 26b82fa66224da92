package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/quota"
)

const defaultQuotaTTL = 48 * time.Hour

// reserveScript grants min(n, limit-used) in one step so concurrent callers
// can never push the counter past the limit.
var reserveScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
local want = tonumber(ARGV[2])
local grant = math.min(want, math.max(0, limit - used))
if grant > 0 then
  redis.call('INCRBY', KEYS[1], grant)
end
redis.call('EXPIRE', KEYS[1], ARGV[3])
return grant
`)

// QuotaCounter is a quota.Counter shared by every process using the same Redis.
type QuotaCounter struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ quota.Counter = (*QuotaCounter)(nil)

// NewQuotaCounter creates a counter storing keys under "quota:".
func NewQuotaCounter(rdb redis.UniversalClient) *QuotaCounter {
	return &QuotaCounter{rdb: rdb, prefix: "quota:", ttl: defaultQuotaTTL}
}

// Key returns the Redis key for a user and day.
func (c *QuotaCounter) Key(userID string, day time.Time) string {
	return c.prefix + userID + ":" + quota.DayKey(day)
}

func (c *QuotaCounter) Reserve(ctx context.Context, userID string, day time.Time, limit, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	granted, err := reserveScript.Run(ctx, c.rdb, []string{c.Key(userID, day)},
		limit, n, int(c.ttl.Seconds())).Int()
	if err != nil {
		return 0, fmt.Errorf("redis quota reserve: %w", err)
	}
	return granted, nil
}

func (c *QuotaCounter) Used(ctx context.Context, userID string, day time.Time) (int, error) {
	used, err := c.rdb.Get(ctx, c.Key(userID, day)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis quota read: %w", err)
	}
	return used, nil
}
