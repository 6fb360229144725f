package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisNamespace   = "navigator:"
	redisDialTimeout = 5 * time.Second
)

// RedisProvider keeps snapshots in Redis so several navigator processes share
// one cache and it survives restarts.
type RedisProvider struct {
	client redis.UniversalClient
}

func NewRedisProvider(connectionString string) (*RedisProvider, error) {
	if connectionString == "" {
		return nil, errors.New("redis connection string is required")
	}
	opts, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis connection string: %w", err)
	}
	opts.DialTimeout = redisDialTimeout

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisProvider{client: client}, nil
}

func (p *RedisProvider) Get(ctx context.Context, key string) (string, error) {
	value, err := p.client.Get(ctx, redisNamespace+key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value; ttl <= 0 keeps it without expiry.
func (p *RedisProvider) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := p.client.Set(ctx, redisNamespace+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (p *RedisProvider) Delete(ctx context.Context, key string) error {
	if err := p.client.Del(ctx, redisNamespace+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (p *RedisProvider) Close() error {
	return p.client.Close()
}
