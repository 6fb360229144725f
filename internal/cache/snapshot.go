package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Snapshot is a cached value with the time it was stored.
type Snapshot[T any] struct {
	Value    T         `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// IsExpired reports whether the snapshot is older than ttl. A ttl <= 0 treats
// every snapshot as expired.
func (s Snapshot[T]) IsExpired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(s.StoredAt) >= ttl
}

func (s Snapshot[T]) Age(now time.Time) time.Duration {
	return now.Sub(s.StoredAt)
}

// Store keeps JSON encoded snapshots in a Provider. Entries live for the
// retention period regardless of freshness so that stale data stays
// available as a fallback.
type Store[T any] struct {
	provider  Provider
	retention time.Duration
	now       func() time.Time
}

func NewStore[T any](provider Provider, retention time.Duration) *Store[T] {
	return &Store[T]{
		provider:  provider,
		retention: retention,
		now:       time.Now,
	}
}

func (s *Store[T]) Get(ctx context.Context, key string) (Snapshot[T], error) {
	var snapshot Snapshot[T]

	raw, err := s.provider.Get(ctx, key)
	if err != nil {
		return snapshot, err
	}

	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return Snapshot[T]{}, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	if snapshot.StoredAt.IsZero() {
		return Snapshot[T]{}, fmt.Errorf("cached %s has no timestamp", key)
	}
	return snapshot, nil
}

func (s *Store[T]) Set(ctx context.Context, key string, value T) (Snapshot[T], error) {
	snapshot := Snapshot[T]{Value: value, StoredAt: s.now().UTC()}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return Snapshot[T]{}, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.provider.Set(ctx, key, string(raw), s.retention); err != nil {
		return Snapshot[T]{}, err
	}
	return snapshot, nil
}

func (s *Store[T]) Delete(ctx context.Context, key string) error {
	if err := s.provider.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// WithClock replaces the clock used to stamp snapshots.
func (s *Store[T]) WithClock(now func() time.Time) *Store[T] {
	if now != nil {
		s.now = now
	}
	return s
}
