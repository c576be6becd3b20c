package fxrate

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL keeps a downloaded yearly feed for one hour
const DefaultCacheTTL = 1 * time.Hour

// Source provides yearly rate feeds
type Source interface {
	FetchYear(ctx context.Context, year int) (*Feed, error)
}

// FeedCache caches yearly feeds to avoid downloading them for every invoice
type FeedCache struct {
	mu      sync.RWMutex
	entries map[int]*feedCacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type feedCacheEntry struct {
	feed      *Feed
	expiresAt time.Time
}

// NewFeedCache creates a new feed cache
func NewFeedCache(ttl time.Duration) *FeedCache {
	return &FeedCache{
		entries: make(map[int]*feedCacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves a cached feed
func (c *FeedCache) Get(year int) (*Feed, bool) {
	c.mu.RLock()
	entry, exists := c.entries[year]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, year)
		c.mu.Unlock()
		return nil, false
	}

	return entry.feed, true
}

// Set caches a feed
func (c *FeedCache) Set(year int, feed *Feed) {
	if feed == nil {
		return
	}

	c.mu.Lock()
	c.entries[year] = &feedCacheEntry{
		feed:      feed,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Clear removes all cached entries
func (c *FeedCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[int]*feedCacheEntry)
	c.mu.Unlock()
}

// Size returns the number of cached entries
func (c *FeedCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CachedSource serves feeds from a cache and falls through to source on a
// miss. Failed downloads are not cached.
type CachedSource struct {
	source Source
	cache  *FeedCache
}

// NewCachedSource wraps source with a cache of the given TTL
func NewCachedSource(source Source, ttl time.Duration) *CachedSource {
	return &CachedSource{source: source, cache: NewFeedCache(ttl)}
}

// Cache returns the underlying cache
func (s *CachedSource) Cache() *FeedCache {
	return s.cache
}

// FetchYear implements Source
func (s *CachedSource) FetchYear(ctx context.Context, year int) (*Feed, error) {
	if feed, ok := s.cache.Get(year); ok {
		return feed, nil
	}
	feed, err := s.source.FetchYear(ctx, year)
	if err != nil {
		return nil, err
	}
	s.cache.Set(year, feed)
	return feed, nil
}
