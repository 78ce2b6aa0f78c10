// Package cache provides a thread-safe in-memory store for completed
// discovery runs so repeated searches for the same expense skip the provider
// round trips.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/spendlens/backend/internal/domain"
)

// cleanupInterval controls how often expired entries are swept
const cleanupInterval = 10 * time.Minute

// cacheItem is a single stored result with its expiration
type cacheItem struct {
	result     *domain.DiscoveryResult
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL support.
// It implements domain.CacheRepository.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	stop  chan struct{}
}

// NewMemoryCache creates a new in-memory cache and starts its background
// sweep of expired entries
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]cacheItem),
		stop: make(chan struct{}),
	}
	go c.cleanupExpired()
	return c
}

// Get retrieves a cached discovery result
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.DiscoveryResult, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists || time.Now().After(item.expiration) {
		return nil, domain.ErrCacheMiss
	}
	return item.result, nil
}

// Set stores a discovery result with the given TTL
func (c *MemoryCache) Set(ctx context.Context, key string, result *domain.DiscoveryResult, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		result:     result,
		expiration: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a cached result
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Size returns the current number of items in the cache
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Close stops the background cleanup goroutine
func (c *MemoryCache) Close() {
	close(c.stop)
}

// cleanupExpired removes expired entries periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mutex.Lock()
			now := time.Now()
			for key, item := range c.data {
				if now.After(item.expiration) {
					delete(c.data, key)
				}
			}
			c.mutex.Unlock()
		}
	}
}
