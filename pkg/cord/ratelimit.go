// ratelimit.go provides an optional distributed rate counter. The default
// rate_anomaly check in engine.go scans the local audit log, which is
// correct for a single process but undercounts when several CORD instances
// guard the same principal concurrently. RedisRateCounter gives those
// deployments a shared counter; it is never required.
package cord

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateCounter reports how many submissions a key has seen in the trailing
// window.
type RateCounter interface {
	Record(ctx context.Context, key string, now time.Time) error
	Count(ctx context.Context, key string, window time.Duration, now time.Time) (int, error)
}

// RedisRateCounter implements RateCounter as a Redis sorted set keyed by
// timestamp, trimmed to the window on every read.
type RedisRateCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisRateCounter wraps an existing Redis client. prefix namespaces keys
// so multiple CORD deployments can share one Redis instance.
func NewRedisRateCounter(client *redis.Client, prefix string) *RedisRateCounter {
	return &RedisRateCounter{client: client, prefix: prefix}
}

func (c *RedisRateCounter) keyFor(key string) string {
	return c.prefix + ":rate:" + key
}

// Record adds one submission timestamp to key's sorted set.
func (c *RedisRateCounter) Record(ctx context.Context, key string, now time.Time) error {
	member := redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()}
	redisKey := c.keyFor(key)
	if err := c.client.ZAdd(ctx, redisKey, member).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, redisKey, 24*time.Hour).Err()
}

// Count trims entries older than window and returns how many remain.
func (c *RedisRateCounter) Count(ctx context.Context, key string, window time.Duration, now time.Time) (int, error) {
	redisKey := c.keyFor(key)
	cutoff := now.Add(-window).UnixNano()
	if err := c.client.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return 0, err
	}
	n, err := c.client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
