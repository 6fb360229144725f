package cache

// Package cache stores catalog snapshots (collections, discount settings and
// product lists) so the navigator can serve them when the storefront is
// unreachable.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("key not found")

// Provider is a string key/value store. A ttl <= 0 keeps the entry until it
// is deleted or evicted.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
	MemoryCapacity        int
	Pool                  *pgxpool.Pool
}

func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider(cfg.MemoryCapacity)
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	case "postgres":
		if cfg.Pool == nil {
			return nil, fmt.Errorf("postgres cache provider requires a database pool")
		}
		return NewPostgresProvider(ctx, cfg.Pool)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

const (
	collectionsKey      = "catalog:collections"
	discountSettingsKey = "catalog:discount-settings"
)

func CollectionsKey() string {
	return collectionsKey
}

func DiscountSettingsKey() string {
	return discountSettingsKey
}

func ProductsKey(collectionHandle string) string {
	return fmt.Sprintf("catalog:products:%s", collectionHandle)
}
