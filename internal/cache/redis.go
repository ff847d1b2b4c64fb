package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ledger:"

// RedisViewCache shares computed views between API instances. Invalidation
// bumps a per-user generation number; entries of older generations are never
// read again and age out through their TTL. Set writes under the generation
// the caller captured, so a view built before an invalidation lands in a
// dead keyspace.
type RedisViewCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ ViewCache = (*RedisViewCache)(nil)

// NewRedisViewCache connects to redisURL (redis://...) and verifies the connection.
func NewRedisViewCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisViewCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisViewCache{rdb: rdb, ttl: ttl}, nil
}

func (c *RedisViewCache) Close() error {
	return c.rdb.Close()
}

func genKey(userID string) string {
	return redisKeyPrefix + "gen:" + userID
}

func viewKey(userID string, gen int64, key string) string {
	return redisKeyPrefix + "view:" + userID + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

func (c *RedisViewCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisViewCache) Get(ctx context.Context, userID, key string, dst any) (bool, error) {
	gen, err := c.Generation(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("read cache generation: %w", err)
	}
	raw, err := c.rdb.Get(ctx, viewKey(userID, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cached view: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *RedisViewCache) Set(ctx context.Context, userID string, gen int64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, viewKey(userID, gen, key), raw, c.ttl).Err()
}

func (c *RedisViewCache) InvalidateUser(ctx context.Context, userID string) error {
	return c.rdb.Incr(ctx, genKey(userID)).Err()
}
