package inmemory

import (
	"context"
	"sync"
	"time"
)

// VersionStore computes the data-version token, typically the postgres
// snapshot repository.
type VersionStore interface {
	DataVersion(ctx context.Context, hotelID string) (string, error)
}

// DataVersionCache caches the per-hotel token between writes. The token
// query touches every synced table, and the status endpoint is polled far
// more often than data changes. Writes invalidate, the TTL bounds staleness
// across server instances.
type DataVersionCache struct {
	store VersionStore
	ttl   time.Duration

	mu    sync.RWMutex
	items map[string]versionItem
}

type versionItem struct {
	value     string
	expiresAt time.Time
}

func NewDataVersionCache(store VersionStore, ttl time.Duration) *DataVersionCache {
	return &DataVersionCache{
		store: store,
		ttl:   ttl,
		items: make(map[string]versionItem),
	}
}

func (c *DataVersionCache) Current(ctx context.Context, hotelID string) (string, error) {
	now := time.Now()

	c.mu.RLock()
	item, ok := c.items[hotelID]
	c.mu.RUnlock()
	if ok && item.expiresAt.After(now) {
		return item.value, nil
	}

	value, err := c.store.DataVersion(ctx, hotelID)
	if err != nil {
		return "", err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.items[hotelID] = versionItem{
			value:     value,
			expiresAt: now.Add(c.ttl),
		}
		c.mu.Unlock()
	}

	return value, nil
}

func (c *DataVersionCache) Invalidate(hotelID string) {
	c.mu.Lock()
	delete(c.items, hotelID)
	c.mu.Unlock()
}

func (c *DataVersionCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]versionItem)
	c.mu.Unlock()
}
