package domain

import (
	"context"
	"time"
)

// KVStore is the durable key-value binding behind the reference cache.
// Get reports ok=false for a missing or expired key.
type KVStore interface {
	Get(ctx context.Context, key string) (CacheEntry, bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}
