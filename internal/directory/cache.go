// Package directory caches the Omie supplier/customer directory in memory.
package directory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"paydash/internal/logger"
	"paydash/internal/omie"
)

// DefaultTTL is how long a directory snapshot stays fresh.
const DefaultTTL = 10 * time.Minute

// FetchFunc loads the full directory from upstream.
type FetchFunc func(ctx context.Context) ([]omie.Client, error)

// Cache holds one directory snapshot with a time-based expiry. The snapshot
// is invalidated purely by age and lives for the process lifetime.
//
// Callers must not mutate the returned slice; no defensive copy is made.
// Overlapping calls during expiry may both trigger a refetch — that is
// idempotent and at most doubles upstream load, never incorrect.
type Cache struct {
	fetch FetchFunc
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger

	mu        sync.Mutex
	snapshot  []omie.Client
	populated bool
	fetchedAt time.Time
}

// NewCache creates a cache over the given fetch. A non-positive ttl selects
// the default.
func NewCache(fetch FetchFunc, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		fetch: fetch,
		ttl:   ttl,
		now:   time.Now,
		log:   logger.WithComponent("directory-cache"),
	}
}

// Get returns the cached directory, refetching the whole directory when the
// snapshot is absent or older than the TTL.
func (c *Cache) Get(ctx context.Context) ([]omie.Client, error) {
	c.mu.Lock()
	// Freshness keys on the fetch timestamp, not the snapshot value: a valid
	// fetch may yield a nil directory (vendor page without the list field).
	if c.populated && c.now().Sub(c.fetchedAt) < c.ttl {
		snap := c.snapshot
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	// Refetch happens outside the lock; overlapping refreshes are benign.
	clients, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.snapshot = clients
	c.populated = true
	c.fetchedAt = c.now()
	c.mu.Unlock()

	c.log.Info().
		Int("clients", len(clients)).
		Dur("ttl", c.ttl).
		Msg("Directory snapshot refreshed")
	return clients, nil
}
