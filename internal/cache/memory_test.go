package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryProvider_Expiry(t *testing.T) {
	t.Parallel()

	provider, err := NewMemoryProvider(0)
	if err != nil {
		t.Fatalf("NewMemoryProvider: %v", err)
	}
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }

	ctx := context.Background()
	if err := provider.Set(ctx, "short", "a", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := provider.Set(ctx, "forever", "b", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if got, err := provider.Get(ctx, "short"); err != nil || got != "a" {
		t.Fatalf("Get(short) = %q, %v", got, err)
	}

	now = now.Add(2 * time.Minute)

	if _, err := provider.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired entry to be gone, got %v", err)
	}
	if got, err := provider.Get(ctx, "forever"); err != nil || got != "b" {
		t.Fatalf("Get(forever) = %q, %v", got, err)
	}
	if provider.Len() != 1 {
		t.Fatalf("expected expired entry to be evicted, len = %d", provider.Len())
	}

	if err := provider.Delete(ctx, "forever"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := provider.Get(ctx, "forever"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted entry to be gone, got %v", err)
	}
}

func TestMemoryProvider_Capacity(t *testing.T) {
	t.Parallel()

	provider, err := NewMemoryProvider(2)
	if err != nil {
		t.Fatalf("NewMemoryProvider: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := provider.Set(ctx, key, key, 0); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}
	if _, err := provider.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected least recently used entry to be evicted, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	provider, err := NewProvider(context.Background(), Config{})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, ok := provider.(*MemoryProvider); !ok {
		t.Fatalf("expected memory provider by default, got %T", provider)
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "postgres"}); err == nil {
		t.Fatal("expected error for postgres provider without pool")
	}
	if _, err := NewProvider(context.Background(), Config{Provider: "memcached"}); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	if ProductsKey("wellness-1") != "catalog:products:wellness-1" {
		t.Fatalf("unexpected products key %q", ProductsKey("wellness-1"))
	}
	if CollectionsKey() == DiscountSettingsKey() {
		t.Fatal("collections and discount settings must use distinct keys")
	}
}
