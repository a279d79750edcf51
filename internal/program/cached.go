package program

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/m3rciful/fitbot/core/logger"
)

// CachedCatalog keeps records from a slower Catalog in memory for ttl.
// Concurrent misses for the same key share one upstream lookup. Misses
// (ErrNotFound) are cached too; provider faults never are.
type CachedCatalog struct {
	next  Catalog
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[Key]cacheEntry
}

type cacheEntry struct {
	rec     Record
	missing bool
	expires time.Time
}

// NewCachedCatalog wraps next. A non-positive ttl returns next unchanged.
func NewCachedCatalog(next Catalog, ttl time.Duration) Catalog {
	if ttl <= 0 {
		return next
	}
	return &CachedCatalog{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[Key]cacheEntry),
	}
}

// Lookup implements Catalog.
func (c *CachedCatalog) Lookup(ctx context.Context, goal Goal, level Level) (Record, error) {
	key := Key{Goal: goal, Level: level}
	if e, ok := c.cached(key); ok {
		logger.Debug(ctx, "service.catalog", "catalog.cache",
			slog.String("status", "ok"),
			slog.String("key", key.String()),
			slog.String("cache", "hit"),
		)
		if e.missing {
			return Record{}, &NotFoundError{Key: key}
		}
		return e.rec, nil
	}

	v, err, shared := c.group.Do(key.String(), func() (any, error) {
		rec, err := c.next.Lookup(context.WithoutCancel(ctx), goal, level)
		switch {
		case err == nil:
			c.store(key, cacheEntry{rec: rec})
		case errors.Is(err, ErrNotFound):
			c.store(key, cacheEntry{missing: true})
		}
		return rec, err
	})
	logger.Debug(ctx, "service.catalog", "catalog.cache",
		slog.String("status", logger.Status(err)),
		slog.String("key", key.String()),
		slog.String("cache", "miss"),
		slog.Bool("shared", shared),
	)
	if err != nil {
		return Record{}, err
	}
	return v.(Record), nil
}

// Invalidate drops every cached record.
func (c *CachedCatalog) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[Key]cacheEntry)
	c.mu.Unlock()
}

func (c *CachedCatalog) cached(key Key) (cacheEntry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		return cacheEntry{}, false
	}
	return e, true
}

func (c *CachedCatalog) store(key Key, e cacheEntry) {
	e.expires = c.now().Add(c.ttl)
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}
