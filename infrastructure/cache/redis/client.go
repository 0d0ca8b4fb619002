// ABOUTME: Redis TTL store implementation using go-redis client
// ABOUTME: Shares domain cool-downs and cached responses across worker processes

package redis

import (
	"context"
	stderrors "errors"
	"time"

	"digests-ingest/core/errors"
	"digests-ingest/pkg/config"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, stderrors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.WrapError(err, "failed to connect to redis")
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, &errors.NotFoundError{Resource: "cache key", ID: key}
		}
		return nil, err
	}

	return val, nil
}

// Set stores a value in Redis with the given TTL.
// A zero TTL means no expiration.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// TTL returns the remaining lifetime of key, or 0 when it never expires
func (c *RedisCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	// go-redis reports -2 for a missing key and -1 for a key without expiry
	switch {
	case ttl == -2:
		return 0, &errors.NotFoundError{Resource: "cache key", ID: key}
	case ttl < 0:
		return 0, nil
	}
	return ttl, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
