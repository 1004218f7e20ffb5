package redlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*Client, *redis.Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = rdb.Close()
		mr.Close()
	}
	return NewClient(rdb), rdb, cleanup
}

func TestTryAcquireAllOrNothing(t *testing.T) {
	c, rdb, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()

	if err := rdb.Set(ctx, Key("L", "r2"), "someone-else", time.Minute).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ok, err := c.TryAcquire(ctx, []string{Key("L", "r1"), Key("L", "r2")}, "tok", time.Minute)
	if err != nil {
		t.Fatalf("try acquire: %v", err)
	}
	if ok {
		t.Fatal("expected partial acquisition to fail")
	}
	if rdb.Exists(ctx, Key("L", "r1")).Val() != 0 {
		t.Fatal("expected rollback of r1 after partial failure")
	}
}

func TestTryAcquireReleaseRoundTrip(t *testing.T) {
	c, _, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()

	keys := []string{Key("L", "r1"), Key("L", "r2")}
	ok, err := c.TryAcquire(ctx, keys, "tok", time.Minute)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	again, err := c.TryAcquire(ctx, keys, "tok2", time.Minute)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if again {
		t.Fatal("expected second acquisition to fail while held")
	}

	n, err := c.Release(ctx, keys, "tok")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if n != len(keys) {
		t.Fatalf("expected %d keys released, got %d", len(keys), n)
	}

	ok, err = c.TryAcquire(ctx, keys, "tok3", time.Minute)
	if err != nil || !ok {
		t.Fatalf("reacquire after release: ok=%v err=%v", ok, err)
	}
}

func TestReleaseIgnoresMismatchedToken(t *testing.T) {
	c, _, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()
	keys := []string{Key("L", "r1")}

	if _, err := c.TryAcquire(ctx, keys, "tok", time.Minute); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	n, err := c.Release(ctx, keys, "wrong-token")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if n != 0 {
		t.Fatal("expected mismatched release to be a no-op")
	}

	// Still held by the original token.
	ok, err := c.TryAcquire(ctx, keys, "tok2", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if ok {
		t.Fatal("expected lease to still be held")
	}
}

func TestExtendRefreshesTTL(t *testing.T) {
	c, rdb, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()
	keys := []string{Key("L", "r1")}

	if _, err := c.TryAcquire(ctx, keys, "tok", 50*time.Millisecond); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	outcome, err := c.Extend(ctx, keys, "tok", time.Minute)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if outcome != Extended {
		t.Fatalf("expected Extended, got %v", outcome)
	}
	ttl := rdb.TTL(ctx, keys[0]).Val()
	if ttl < time.Second {
		t.Fatalf("expected TTL to be refreshed close to a minute, got %v", ttl)
	}
}

func TestExtendReportsLostOnMismatch(t *testing.T) {
	c, _, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()
	keys := []string{Key("L", "r1")}

	if _, err := c.TryAcquire(ctx, keys, "tok", time.Minute); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	outcome, err := c.Extend(ctx, keys, "wrong-token", time.Minute)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if outcome != Lost {
		t.Fatalf("expected Lost, got %v", outcome)
	}
}

func TestNewTokenIsUniqueAndRightLength(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := NewToken()
		if err != nil {
			t.Fatalf("new token: %v", err)
		}
		if len(tok) != tokenBytes*2 {
			t.Fatalf("expected hex-encoded token of length %d, got %d", tokenBytes*2, len(tok))
		}
		if _, dup := seen[tok]; dup {
			t.Fatal("token collision across 100 generations")
		}
		seen[tok] = struct{}{}
	}
}
