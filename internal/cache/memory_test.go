package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGetDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "u1", "k"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	c.Set(ctx, "u1", "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "u1", "k")
	if !ok || string(got) != "v" {
		t.Fatalf("expected hit with v, got %q ok=%v", got, ok)
	}

	if _, ok := c.Get(ctx, "u2", "k"); ok {
		t.Fatalf("scopes must not leak into each other")
	}

	c.Delete(ctx, "u1", "k")
	if _, ok := c.Get(ctx, "u1", "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	c.Set(ctx, "u1", "k", []byte("v"), 15*time.Minute)

	now = now.Add(14 * time.Minute)
	if _, ok := c.Get(ctx, "u1", "k"); !ok {
		t.Fatalf("entry should still be alive before ttl")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(ctx, "u1", "k"); ok {
		t.Fatalf("entry should expire after ttl")
	}
}

func TestKeyBuilders(t *testing.T) {
	if got := PerformanceKey("u1", "complete"); got != "performance:u1:complete" {
		t.Fatalf("unexpected performance key: %s", got)
	}
	if got := DisciplineKey("u1", "direito"); got != "discipline_stats:u1:direito" {
		t.Fatalf("unexpected discipline key: %s", got)
	}
}
