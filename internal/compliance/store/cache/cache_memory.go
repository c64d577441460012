package cache

import (
	"context"
	"sync"
	"time"

	"taxsafe/internal/compliance/models"
)

const defaultMaxEntries = 10_000

type entry struct {
	instances []models.DeadlineInstance
	expiresAt time.Time
}

// InMemory is a bounded TTL cache for deadline expansions. It backs
// single-node deployments and is the fallback behind RedisCache.
type InMemory struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func NewInMemory(ttl time.Duration) *InMemory {
	return &InMemory{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: defaultMaxEntries,
		now:        time.Now,
	}
}

func (c *InMemory) Get(_ context.Context, key string) ([]models.DeadlineInstance, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.ttl > 0 && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]models.DeadlineInstance(nil), e.instances...), true, nil
}

func (c *InMemory) Set(_ context.Context, key string, instances []models.DeadlineInstance) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = entry{
		instances: append([]models.DeadlineInstance(nil), instances...),
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *InMemory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops expired entries, or an arbitrary one when none expired.
func (c *InMemory) evictLocked() {
	now := c.now()
	for k, e := range c.entries {
		if c.ttl > 0 && !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}
