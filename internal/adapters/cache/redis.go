package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

const keyPrefix = "mystic-arcana:"

// RedisCache stores computed daily cards as JSON values.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects and pings the server.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (ports.CachedDaily, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.CachedDaily{}, false, nil
	}
	if err != nil {
		return ports.CachedDaily{}, false, fmt.Errorf("get %s: %w", key, err)
	}

	var entry ports.CachedDaily
	if err := json.Unmarshal(data, &entry); err != nil {
		return ports.CachedDaily{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return entry, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, entry ports.CachedDaily, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, keyPrefix+key, data, ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
