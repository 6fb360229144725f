package cache

import (
	"context"
	"errors"
	"time"

	"github.com/ppchow/pettington-product-navigator/internal/db"
)

type PostgresProvider struct {
	store *db.CacheEntryStore
	close func()
}

type closablePool interface {
	db.DBTX
	Close()
}

func NewPostgresProvider(ctx context.Context, pool closablePool) (*PostgresProvider, error) {
	store, err := db.NewCacheEntryStore(pool)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return &PostgresProvider{store: store, close: pool.Close}, nil
}

func (p *PostgresProvider) Get(ctx context.Context, key string) (string, error) {
	value, err := p.store.Get(ctx, key)
	if errors.Is(err, db.ErrEntryNotFound) {
		return "", ErrNotFound
	}
	return value, err
}

func (p *PostgresProvider) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return p.store.Set(ctx, key, value, ttl)
}

func (p *PostgresProvider) Delete(ctx context.Context, key string) error {
	return p.store.Delete(ctx, key)
}

func (p *PostgresProvider) Close() error {
	if p.close != nil {
		p.close()
	}
	return nil
}
