package kvstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fantasygw/internal/domain"
)

// MemoryStore is a process-local KVStore for tests and single-process runs
// where durability across restarts is not needed.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]domain.CacheEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (domain.CacheEntry, bool, error) {
	if key == "" {
		return domain.CacheEntry{}, false, ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return domain.CacheEntry{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok || entry.Expired(s.now()) {
		return domain.CacheEntry{}, false, nil
	}
	return entry, true, nil
}

func (s *MemoryStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be > 0")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = domain.CacheEntry{Value: value, ExpiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ domain.KVStore = (*MemoryStore)(nil)
