package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type cachedList struct {
	Items []string `json:"items"`
}

func TestStore_SetGet(t *testing.T) {
	t.Parallel()

	provider, err := NewMemoryProvider(10)
	if err != nil {
		t.Fatalf("NewMemoryProvider: %v", err)
	}
	stamp := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore[cachedList](provider, time.Hour).WithClock(func() time.Time { return stamp })

	ctx := context.Background()
	if _, err := store.Get(ctx, "list"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := store.Set(ctx, "list", cachedList{Items: []string{"a", "b"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	snapshot, err := store.Get(ctx, "list")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(snapshot.Value.Items) != 2 || snapshot.Value.Items[1] != "b" {
		t.Fatalf("unexpected value %+v", snapshot.Value)
	}
	if !snapshot.StoredAt.Equal(stamp) {
		t.Fatalf("StoredAt = %v, want %v", snapshot.StoredAt, stamp)
	}

	if err := store.Delete(ctx, "list"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "list"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_GetCorrupt(t *testing.T) {
	t.Parallel()

	provider, err := NewMemoryProvider(10)
	if err != nil {
		t.Fatalf("NewMemoryProvider: %v", err)
	}
	ctx := context.Background()
	_ = provider.Set(ctx, "bad", "{not json", 0)
	_ = provider.Set(ctx, "untimed", `{"value":{"items":["a"]}}`, 0)

	store := NewStore[cachedList](provider, 0)
	if _, err := store.Get(ctx, "bad"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if _, err := store.Get(ctx, "untimed"); err == nil {
		t.Fatal("expected error for snapshot without timestamp")
	}
}

func TestSnapshot_IsExpired(t *testing.T) {
	t.Parallel()

	stored := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	snapshot := Snapshot[int]{Value: 1, StoredAt: stored}

	tests := []struct {
		name string
		ttl  time.Duration
		now  time.Time
		want bool
	}{
		{name: "fresh", ttl: 5 * time.Minute, now: stored.Add(time.Minute), want: false},
		{name: "exactly ttl", ttl: 5 * time.Minute, now: stored.Add(5 * time.Minute), want: true},
		{name: "older than ttl", ttl: 5 * time.Minute, now: stored.Add(time.Hour), want: true},
		{name: "zero ttl", ttl: 0, now: stored, want: true},
	}

	for _, tt := range tests {
		if got := snapshot.IsExpired(tt.ttl, tt.now); got != tt.want {
			t.Errorf("%s: IsExpired() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
