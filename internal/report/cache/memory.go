package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sandistd/carbon-footprint-app/internal/report/domain"
)

type memoryEntry struct {
	report    domain.DashboardReport
	expiresAt time.Time
}

// MemoryCache keeps reports in process. It serves single-replica setups
// that run without Redis.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.Mutex
	generation int64
	entries    map[string]memoryEntry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Generation(context.Context) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *MemoryCache) Get(_ context.Context, generation int64, key string) (*domain.DashboardReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return nil, false
	}
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	report := entry.report
	return &report, true
}

func (c *MemoryCache) Set(_ context.Context, generation int64, key string, report domain.DashboardReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation || c.ttl <= 0 {
		return
	}
	c.entries[key] = memoryEntry{report: report, expiresAt: c.now().Add(c.ttl)}
}

func (c *MemoryCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries = make(map[string]memoryEntry)
}
