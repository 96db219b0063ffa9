package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "complaints:report:"
	generationKey = keyPrefix + "generation"
)

// ReportCache stores encoded reports keyed by generation and sort order.
// Invalidate advances the generation, so an entry filled from a read that
// started before the last write lands under a key no later read asks for.
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, generation int64, order string) ([]byte, bool, error)
	Set(ctx context.Context, generation int64, order string, payload []byte) error
	Invalidate(ctx context.Context) error
}

// redisClient is the subset of *redis.Client the cache needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// RedisReportCache keeps reports in Redis with a TTL. Entries of retired
// generations are never read again and expire on their own.
type RedisReportCache struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisReportCache builds a cache over client.
func NewRedisReportCache(client redisClient, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl}
}

func (c *RedisReportCache) Generation(ctx context.Context) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

func (c *RedisReportCache) Get(ctx context.Context, generation int64, order string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, entryKey(generation, order)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, generation int64, order string, payload []byte) error {
	return c.client.Set(ctx, entryKey(generation, order), payload, c.ttl).Err()
}

func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

func entryKey(generation int64, order string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, generation, order)
}

// NopReportCache never stores anything; every report is recomputed.
type NopReportCache struct{}

func (NopReportCache) Generation(context.Context) (int64, error)                { return 0, nil }
func (NopReportCache) Get(context.Context, int64, string) ([]byte, bool, error) { return nil, false, nil }
func (NopReportCache) Set(context.Context, int64, string, []byte) error         { return nil }
func (NopReportCache) Invalidate(context.Context) error                         { return nil }
