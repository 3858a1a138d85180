// Package cache holds read responses of the HTTP API between writes.
// It uses patrickmn/go-cache for TTL-based expiry.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Key prefixes for cached listings.
const (
	PrefixHistory = "history:"
	PrefixRecords = "records:"
)

// Cache wraps go-cache with prefix invalidation.
type Cache struct {
	store *gocache.Cache
}

// New creates a cache with the given TTL and cleanup interval.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Key joins a prefix and the request parts into a cache key.
func Key(prefix string, parts ...string) string {
	return prefix + strings.Join(parts, "|")
}

// Get retrieves a value from the cache.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// Delete removes a value.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Invalidate removes every entry whose key starts with one of prefixes.
func (c *Cache) Invalidate(prefixes ...string) {
	for key := range c.store.Items() {
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				c.store.Delete(key)
				break
			}
		}
	}
}

// Clear removes all items.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of items, expired ones included until cleanup.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}
