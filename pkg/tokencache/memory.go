package tokencache

import (
	"context"
	"sync"
	"time"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
)

const memorySweepInterval = time.Minute

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	claims   identity.Claims
	deadline time.Time
}

// NewMemory returns a process-local cache with a background sweeper.
func NewMemory() Cache {
	return newMemory(time.Now, memorySweepInterval)
}

func newMemory(now func() time.Time, sweepEvery time.Duration) *memoryCache {
	c := &memoryCache{
		entries: make(map[string]memoryEntry),
		now:     now,
		stopCh:  make(chan struct{}),
	}
	go c.sweepLoop(sweepEvery)
	return c
}

func (c *memoryCache) Get(_ context.Context, token string) (identity.Claims, bool) {
	key := hashKey(token)
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		recordLookup("memory", resultMiss)
		return identity.Claims{}, false
	}
	if !now.Before(entry.deadline) || entry.claims.Expired(now) {
		delete(c.entries, key)
		recordLookup("memory", resultMiss)
		return identity.Claims{}, false
	}
	recordLookup("memory", resultHit)
	return entry.claims, true
}

func (c *memoryCache) Put(_ context.Context, token string, claims identity.Claims, ttl time.Duration) {
	now := c.now()
	ttl = effectiveTTL(claims, ttl, now)
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hashKey(token)] = memoryEntry{claims: claims, deadline: now.Add(ttl)}
}

func (c *memoryCache) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanup(c.now())
		case <-c.stopCh:
			return
		}
	}
}

func (c *memoryCache) cleanup(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if !now.Before(entry.deadline) {
			delete(c.entries, key)
		}
	}
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *memoryCache) Close() error {
	c.once.Do(func() {
		close(c.stopCh)
	})
	return nil
}
