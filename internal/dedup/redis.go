package dedup

import (
	"context"
	"fmt"
	"log"
	"time"

	"onlinejobs-scout/internal/models"

	"github.com/redis/go-redis/v9"
)

// DefaultSeenKey is the Redis set holding known job IDs.
const DefaultSeenKey = "onlinejobs:seen"

// setCommands is the part of the Redis client the cache needs.
type setCommands interface {
	SIsMember(ctx context.Context, key string, member interface{}) *redis.BoolCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// SeenCache puts a Redis set of known job IDs in front of another Store.
// Redis errors never fail an operation; the backend stays authoritative.
type SeenCache struct {
	Store
	rdb setCommands
	key string
}

func NewSeenCache(backend Store, rdb setCommands, key string) *SeenCache {
	if key == "" {
		key = DefaultSeenKey
	}
	return &SeenCache{Store: backend, rdb: rdb, key: key}
}

func (c *SeenCache) Exists(ctx context.Context, jobID string) (bool, error) {
	hit, err := c.rdb.SIsMember(ctx, c.key, jobID).Result()
	if err != nil {
		log.Printf("[seen-cache] ⚠️ SISMEMBER failed, using store: %v", err)
	} else if hit {
		return true, nil
	}

	ok, err := c.Store.Exists(ctx, jobID)
	if err != nil {
		return false, err
	}
	if ok {
		c.remember(ctx, jobID)
	}
	return ok, nil
}

func (c *SeenCache) Upsert(ctx context.Context, rec *models.JobRecord) error {
	if err := c.Store.Upsert(ctx, rec); err != nil {
		return err
	}
	c.remember(ctx, rec.JobID)
	return nil
}

// Cleanup drops the cached set after removing records so deleted IDs are
// not reported as known.
func (c *SeenCache) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	n, err := c.Store.Cleanup(ctx, olderThan)
	if err != nil || n == 0 {
		return n, err
	}
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		log.Printf("[seen-cache] ⚠️ DEL %s failed: %v", c.key, err)
	}
	return n, nil
}

func (c *SeenCache) remember(ctx context.Context, jobID string) {
	if err := c.rdb.SAdd(ctx, c.key, jobID).Err(); err != nil {
		log.Printf("[seen-cache] ⚠️ SADD failed: %v", err)
	}
}
