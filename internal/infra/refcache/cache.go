package refcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/telemetry"
)

const DefaultTTL = time.Duration(domain.DefaultCacheTTLSeconds) * time.Second

var ErrEmptyCatalog = errors.New("upstream returned an empty player catalog")

// CatalogSource fetches the raw catalog for a sport from the platform.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, sport string) ([]byte, error)
}

// CatalogSourceFunc adapts a function to CatalogSource.
type CatalogSourceFunc func(ctx context.Context, sport string) ([]byte, error)

func (f CatalogSourceFunc) FetchCatalog(ctx context.Context, sport string) ([]byte, error) {
	return f(ctx, sport)
}

type Options struct {
	// TTL applies to durable writes.
	TTL time.Duration
	// LocalTTL caps the process-local copy; it never exceeds TTL.
	LocalTTL time.Duration
	Logger   *zap.Logger
	Metrics  domain.Metrics
	Now      func() time.Time
}

type localEntry struct {
	index     domain.PlayerIndex
	expiresAt time.Time
}

// Cache is the two-tier reference catalog cache: a process-local map in front
// of a durable KVStore, refilled from the platform on miss or expiry.
type Cache struct {
	store    domain.KVStore
	source   CatalogSource
	ttl      time.Duration
	localTTL time.Duration
	logger   *zap.Logger
	metrics  domain.Metrics
	now      func() time.Time

	mu    sync.RWMutex
	local map[string]localEntry
	group singleflight.Group
}

func New(store domain.KVStore, source CatalogSource, opts Options) *Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	localTTL := opts.LocalTTL
	if localTTL <= 0 || localTTL > ttl {
		localTTL = ttl
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		store:    store,
		source:   source,
		ttl:      ttl,
		localTTL: localTTL,
		logger:   logger.Named("refcache"),
		metrics:  metrics,
		now:      now,
		local:    make(map[string]localEntry),
	}
}

// Index returns the player index for sport, consulting the local tier, then the
// durable tier, then the platform. Concurrent misses for one sport share a
// single load.
func (c *Cache) Index(ctx context.Context, sport string) (domain.PlayerIndex, error) {
	if index, ok := c.fromLocal(sport); ok {
		c.metrics.ObserveCacheLookup(sport, domain.CacheTierLocal)
		return index, nil
	}

	ch := c.group.DoChan(sport, func() (any, error) {
		// Detached so one caller's cancellation does not fail the others
		// sharing this load; the upstream client bounds it with its own timeout.
		return c.load(context.WithoutCancel(ctx), sport)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(domain.PlayerIndex), nil
	}
}

func (c *Cache) load(ctx context.Context, sport string) (domain.PlayerIndex, error) {
	if index, ok := c.fromLocal(sport); ok {
		c.metrics.ObserveCacheLookup(sport, domain.CacheTierLocal)
		return index, nil
	}

	key := domain.PlayerCatalogKey(sport)
	logger := telemetry.LoggerWithRequest(ctx, c.logger).With(telemetry.SportField(sport))

	if index, expiresAt, ok := c.fromDurable(ctx, key, logger, sport); ok {
		c.storeLocal(sport, index, expiresAt)
		c.metrics.ObserveCacheLookup(sport, domain.CacheTierDurable)
		logger.Debug("reference catalog served from durable tier",
			telemetry.EventField(telemetry.EventCacheHit),
			telemetry.CacheTierField(string(domain.CacheTierDurable)),
			zap.Int("players", len(index)),
		)
		return index, nil
	}

	start := c.now()
	raw, err := c.source.FetchCatalog(ctx, sport)
	if err != nil {
		return nil, err
	}
	index, err := DecodeCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize %s catalog: %w", sport, err)
	}
	if len(index) == 0 {
		return nil, ErrEmptyCatalog
	}
	c.metrics.ObserveCacheLookup(sport, domain.CacheTierUpstream)

	serialized, err := EncodeCatalog(index)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, serialized, c.ttl); err != nil {
		logger.Warn("reference catalog write-through failed",
			telemetry.EventField(telemetry.EventCacheWriteFailed),
			zap.Error(err),
		)
	}
	c.storeLocal(sport, index, c.now().Add(c.localTTL))
	logger.Info("reference catalog refreshed from upstream",
		telemetry.EventField(telemetry.EventCacheRefresh),
		telemetry.DurationField(c.now().Sub(start)),
		zap.Int("players", len(index)),
	)
	return index, nil
}

// fromDurable treats store errors, undecodable values and empty catalogs as a
// cold miss so the caller falls through to the platform.
func (c *Cache) fromDurable(ctx context.Context, key string, logger *zap.Logger, sport string) (domain.PlayerIndex, time.Time, bool) {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Warn("durable reference cache read failed", zap.String("key", key), zap.Error(err))
		return nil, time.Time{}, false
	}
	if !ok {
		return nil, time.Time{}, false
	}
	index, err := DecodeCatalog([]byte(entry.Value))
	if err != nil || len(index) == 0 {
		c.metrics.ObserveCacheParseFailure(sport)
		logger.Warn("durable reference cache value unusable; refetching",
			telemetry.EventField(telemetry.EventCacheParseFailed),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, time.Time{}, false
	}
	expiresAt := entry.ExpiresAt
	if limit := c.now().Add(c.localTTL); expiresAt.IsZero() || expiresAt.After(limit) {
		expiresAt = limit
	}
	return index, expiresAt, true
}

func (c *Cache) fromLocal(sport string) (domain.PlayerIndex, bool) {
	c.mu.RLock()
	entry, ok := c.local[sport]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.index, true
}

func (c *Cache) storeLocal(sport string, index domain.PlayerIndex, expiresAt time.Time) {
	c.mu.Lock()
	c.local[sport] = localEntry{index: index, expiresAt: expiresAt}
	c.mu.Unlock()
}
