// Package thumb resolves display images for media items through an
// ordered fallback chain, sharing generated illustrations process-wide so
// every surface showing the same title converges on the same art.
package thumb

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize bounds the number of distinct titles kept in memory.
const DefaultCacheSize = 1024

// Cache memoizes illustration bytes by title. Lookups for a cached key
// return the identical byte slice, and concurrent misses for one key
// collapse into a single factory call.
type Cache struct {
	entries *lru.Cache[string, []byte]
	group   singleflight.Group
}

// NewCache returns a cache holding at most size entries. Size values <= 0
// fall back to DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, _ := lru.New[string, []byte](size)
	return &Cache{entries: entries}
}

// GetOrCompute returns the cached value for key, computing and storing it
// with factory on first use. A factory error is returned without caching
// anything, so a later call may try again.
func (c *Cache) GetOrCompute(key string, factory func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.entries.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.entries.Get(key); ok {
			return v, nil
		}
		b, err := factory()
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Len returns the number of cached titles.
func (c *Cache) Len() int {
	return c.entries.Len()
}
