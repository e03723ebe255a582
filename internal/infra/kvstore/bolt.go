package kvstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"fantasygw/internal/domain"
)

const (
	cacheBucketName = "reference_cache"
	expiryHeaderLen = 8
)

var (
	ErrStoreClosed = errors.New("kv store is closed")
	ErrEmptyKey    = errors.New("key is required")
)

// BoltStore is a file-backed KVStore. Each value is stored behind an 8-byte
// big-endian expiry (unix nanoseconds); expired values read as misses.
type BoltStore struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
	now    func() time.Time
}

func OpenBoltStore(path string) (*BoltStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}
	options := &bolt.Options{Timeout: time.Second}
	base, err := bolt.Open(trimmed, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if err := base.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cacheBucketName))
		return err
	}); err != nil {
		_ = base.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}
	store := &BoltStore{db: base, path: trimmed, now: time.Now}
	if _, err := store.Purge(context.Background()); err != nil {
		_ = base.Close()
		return nil, err
	}
	return store, nil
}

func (s *BoltStore) Get(ctx context.Context, key string) (domain.CacheEntry, bool, error) {
	if key == "" {
		return domain.CacheEntry{}, false, ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return domain.CacheEntry{}, false, err
	}
	var (
		entry domain.CacheEntry
		found bool
	)
	err := s.view(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(cacheBucketName)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		decoded, err := decodeValue(raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		if decoded.Expired(s.now()) {
			return nil
		}
		entry, found = decoded, true
		return nil
	})
	return entry, found, err
}

func (s *BoltStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be > 0")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	expiresAt := s.now().Add(ttl)
	return s.update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(cacheBucketName)).Put([]byte(key), encodeValue(value, expiresAt)); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
		return nil
	})
}

// Purge deletes expired entries and reports how many were removed.
func (s *BoltStore) Purge(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed := 0
	err := s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cacheBucketName))
		var expired [][]byte
		now := s.now()
		if err := bucket.ForEach(func(key, value []byte) error {
			entry, err := decodeValue(value)
			if err != nil || entry.Expired(now) {
				expired = append(expired, append([]byte(nil), key...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, key := range expired {
			if err := bucket.Delete(key); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}

func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *BoltStore) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.View(fn)
}

func (s *BoltStore) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Update(fn)
}

func encodeValue(value string, expiresAt time.Time) []byte {
	buf := make([]byte, expiryHeaderLen+len(value))
	binary.BigEndian.PutUint64(buf[:expiryHeaderLen], uint64(expiresAt.UnixNano()))
	copy(buf[expiryHeaderLen:], value)
	return buf
}

func decodeValue(raw []byte) (domain.CacheEntry, error) {
	if len(raw) < expiryHeaderLen {
		return domain.CacheEntry{}, fmt.Errorf("value too short")
	}
	nanos := int64(binary.BigEndian.Uint64(raw[:expiryHeaderLen]))
	return domain.CacheEntry{
		Value:     string(raw[expiryHeaderLen:]),
		ExpiresAt: time.Unix(0, nanos),
	}, nil
}

var _ domain.KVStore = (*BoltStore)(nil)
