package redlock

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// delIfEqualScript atomically deletes a key iff its current value equals
// the lease token, so a stale release can never destroy a lease another
// acquirer has since taken.
var delIfEqualScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// pexpireIfEqualScript atomically refreshes a key's TTL iff its current
// value equals the lease token.
var pexpireIfEqualScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
    return 0
end
`)

// Outcome is the result of an Extend call.
type Outcome int

const (
	// Extended means every key's TTL was refreshed.
	Extended Outcome = iota
	// Lost means at least one key no longer carried the lease token —
	// the lease has expired or been taken by another acquirer.
	Lost
)

// Client is a single-store leasing client backed by a Redis-compatible
// server.
type Client struct {
	rdb *redis.Client
}

// NewClient wraps rdb as a redlock Client. The caller owns rdb's lifecycle;
// Client.Close delegates to it but does not require it.
func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Key returns the store key for resource r under lock name n.
func Key(lockName, resource string) string {
	return lockName + ":" + resource
}

// TryAcquire attempts to create every key in keys with value token and the
// given ttl, atomically and only if absent. It succeeds only if every key
// was created; on partial success, every key this call did create is
// rolled back (released) before returning false, so the caller can retry
// with a fresh token.
func (c *Client) TryAcquire(ctx context.Context, keys []string, token string, ttl time.Duration) (bool, error) {
	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		ok, err := c.rdb.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			c.rollback(context.WithoutCancel(ctx), acquired, token)
			return false, err
		}
		if !ok {
			c.rollback(context.WithoutCancel(ctx), acquired, token)
			return false, nil
		}
		acquired = append(acquired, key)
	}
	return true, nil
}

func (c *Client) rollback(ctx context.Context, acquired []string, token string) {
	if len(acquired) == 0 {
		return
	}
	_, _ = c.Release(ctx, acquired, token)
}

// Release deletes every key in keys iff its value still equals token. A
// mismatched or already-absent key is silently ignored — the lease has
// already expired or been taken. A store error on one key does not stop
// the remaining keys from being tried; the first such error is returned.
// Callers of the public Coordinator API log rather than surface it.
func (c *Client) Release(ctx context.Context, keys []string, token string) (int, error) {
	released := 0
	var firstErr error
	for _, key := range keys {
		res, err := delIfEqualScript.Run(ctx, c.rdb, []string{key}, token).Result()
		if err != nil && err != redis.Nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if n, ok := res.(int64); ok && n > 0 {
			released++
		}
	}
	return released, firstErr
}

// Extend refreshes the TTL of every key in keys to newTTL iff its value
// still equals token. If any key has lost the token, the lease is
// considered Lost globally and the caller should stop its extension task.
// Keys are processed in order and the loop stops at the first lost key:
// keys before it have already been refreshed, keys after it are left
// untouched.
func (c *Client) Extend(ctx context.Context, keys []string, token string, newTTL time.Duration) (Outcome, error) {
	ms := newTTL.Milliseconds()
	for _, key := range keys {
		res, err := pexpireIfEqualScript.Run(ctx, c.rdb, []string{key}, token, ms).Result()
		if err != nil && err != redis.Nil {
			return Lost, err
		}
		n, _ := res.(int64)
		if n == 0 {
			return Lost, nil
		}
	}
	return Extended, nil
}

// Ping verifies connectivity to the underlying store.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
