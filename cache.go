package entkit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// =====================================
// Result Cache
// =====================================

// DefaultCacheTTL is the freshness window of cached results. Entries are a
// short-lived convenience, not durable state: any successful mutation
// invalidates the whole entity wholesale.
const DefaultCacheTTL = 30 * time.Second

// CacheStore caches list results keyed by the full parameter tuple and
// detail records keyed by (slug, id). Only successful results are stored.
// Implementations must be safe for concurrent use.
type CacheStore interface {
	GetList(ctx context.Context, key string) (ListResult, bool)
	SetList(ctx context.Context, key string, result ListResult)
	GetDetail(ctx context.Context, slug, id string) (Record, bool)
	SetDetail(ctx context.Context, slug, id string, record Record)

	// InvalidateEntity drops every list and detail entry of the slug.
	InvalidateEntity(ctx context.Context, slug string)
	// InvalidateDetail drops one detail entry.
	InvalidateDetail(ctx context.Context, slug, id string)
}

// DetailCacheKey builds the cache key of one detail record.
func DetailCacheKey(slug, id string) string {
	return slug + "#" + id
}

// entityKeyPrefix matches every key belonging to a slug: list keys are
// "slug|..." (ListParams.CacheKey) and detail keys are "slug#id".
func entityKeyPrefixes(slug string) []string {
	return []string{slug + "|", slug + "#"}
}

// MemoryCache is the in-process CacheStore with a TTL freshness window.
type MemoryCache struct {
	mutex   sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	list    ListResult
	detail  Record
	isList  bool
	expires time.Time
}

// NewMemoryCache creates a memory cache. A non-positive ttl takes
// DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// GetList implements CacheStore.
func (c *MemoryCache) GetList(_ context.Context, key string) (ListResult, bool) {
	c.mutex.RLock()
	entry, ok := c.entries[key]
	c.mutex.RUnlock()
	if !ok || !entry.isList || c.now().After(entry.expires) {
		return ListResult{}, false
	}
	return entry.list, true
}

// SetList implements CacheStore.
func (c *MemoryCache) SetList(_ context.Context, key string, result ListResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = memoryEntry{list: result, isList: true, expires: c.now().Add(c.ttl)}
}

// GetDetail implements CacheStore.
func (c *MemoryCache) GetDetail(_ context.Context, slug, id string) (Record, bool) {
	c.mutex.RLock()
	entry, ok := c.entries[DetailCacheKey(slug, id)]
	c.mutex.RUnlock()
	if !ok || entry.isList || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.detail, true
}

// SetDetail implements CacheStore.
func (c *MemoryCache) SetDetail(_ context.Context, slug, id string, record Record) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[DetailCacheKey(slug, id)] = memoryEntry{detail: record, expires: c.now().Add(c.ttl)}
}

// InvalidateEntity implements CacheStore.
func (c *MemoryCache) InvalidateEntity(_ context.Context, slug string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for key := range c.entries {
		for _, prefix := range entityKeyPrefixes(slug) {
			if strings.HasPrefix(key, prefix) {
				delete(c.entries, key)
				break
			}
		}
	}
}

// InvalidateDetail implements CacheStore.
func (c *MemoryCache) InvalidateDetail(_ context.Context, slug, id string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, DetailCacheKey(slug, id))
}

// Len returns the number of live entries, counting expired ones until they
// are overwritten or invalidated.
func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}
