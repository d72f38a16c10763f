package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const claimsKeyPrefix = "techcrew:claims:"

// RedisClaimsCache keeps verified claims in Redis so every instance
// behind a load balancer shares them.
type RedisClaimsCache struct {
	Client *redis.Client
}

func NewRedisClaimsCache(client *redis.Client) *RedisClaimsCache {
	return &RedisClaimsCache{Client: client}
}

func (c *RedisClaimsCache) Get(ctx context.Context, key string) (*CachedClaims, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}
	raw, err := c.Client.Get(ctx, claimsKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get claims from redis: %w", err)
	}

	var cc CachedClaims
	if err := json.Unmarshal([]byte(raw), &cc); err != nil {
		return nil, fmt.Errorf("unmarshal cached claims: %w", err)
	}
	return &cc, nil
}

func (c *RedisClaimsCache) Set(ctx context.Context, key string, cc CachedClaims, ttl time.Duration) error {
	if c.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	b, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("marshal cached claims: %w", err)
	}
	if err := c.Client.Set(ctx, claimsKeyPrefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("store claims in redis: %w", err)
	}
	return nil
}
