package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool used by the stores.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var ErrEntryNotFound = errors.New("cache entry not found")

const createCacheEntriesTable = `
CREATE TABLE IF NOT EXISTS navigator_cache_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const getCacheEntry = `
SELECT value, expires_at
FROM navigator_cache_entries
WHERE key = $1`

const upsertCacheEntry = `
INSERT INTO navigator_cache_entries (key, value, expires_at, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = now()`

const deleteCacheEntry = `DELETE FROM navigator_cache_entries WHERE key = $1`

// CacheEntryStore persists cache entries. A nil expires_at never expires.
type CacheEntryStore struct {
	db  DBTX
	now func() time.Time
}

func NewCacheEntryStore(db DBTX) (*CacheEntryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &CacheEntryStore{db: db, now: time.Now}, nil
}

func (s *CacheEntryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createCacheEntriesTable); err != nil {
		return fmt.Errorf("failed to create cache table: %w", err)
	}
	return nil
}

func (s *CacheEntryStore) Get(ctx context.Context, key string) (string, error) {
	var (
		value     string
		expiresAt *time.Time
	)
	err := s.db.QueryRow(ctx, getCacheEntry, key).Scan(&value, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEntryNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cache entry %s: %w", key, err)
	}

	if expiresAt != nil && s.now().After(*expiresAt) {
		if delErr := s.Delete(ctx, key); delErr != nil {
			return "", delErr
		}
		return "", ErrEntryNotFound
	}
	return value, nil
}

func (s *CacheEntryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		at := s.now().Add(ttl).UTC()
		expiresAt = &at
	}
	if _, err := s.db.Exec(ctx, upsertCacheEntry, key, value, expiresAt); err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", key, err)
	}
	return nil
}

func (s *CacheEntryStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, deleteCacheEntry, key); err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}
