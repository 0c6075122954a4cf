package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appledger "github.com/peerrank/backend/internal/application/ledger"
)

// InMemoryBalanceCache implements BalanceCache with a process-local map.
// Suitable for single-instance deployments and tests; distributed
// deployments should use RedisBalanceCache so invalidations propagate.
type InMemoryBalanceCache struct {
	mu      sync.RWMutex
	entries map[string]balanceEntry
	ttl     time.Duration
}

type balanceEntry struct {
	balance   int64
	expiresAt time.Time
}

// NewInMemoryBalanceCache creates an in-memory balance cache
func NewInMemoryBalanceCache(ttl time.Duration) *InMemoryBalanceCache {
	if ttl <= 0 {
		ttl = DefaultBalanceTTL
	}
	return &InMemoryBalanceCache{
		entries: make(map[string]balanceEntry),
		ttl:     ttl,
	}
}

// Get returns the cached balance and whether it was present
func (c *InMemoryBalanceCache) Get(_ context.Context, projectID uuid.UUID, userID string) (int64, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(projectID, userID)]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, false, nil
	}
	return entry.balance, true, nil
}

// Set stores the balance with the configured TTL
func (c *InMemoryBalanceCache) Set(_ context.Context, projectID uuid.UUID, userID string, balance int64) error {
	c.mu.Lock()
	c.entries[cacheKey(projectID, userID)] = balanceEntry{
		balance:   balance,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached balance after a ledger write
func (c *InMemoryBalanceCache) Invalidate(_ context.Context, projectID uuid.UUID, userID string) error {
	c.mu.Lock()
	delete(c.entries, cacheKey(projectID, userID))
	c.mu.Unlock()
	return nil
}

func cacheKey(projectID uuid.UUID, userID string) string {
	return projectID.String() + ":" + userID
}

// Ensure InMemoryBalanceCache implements BalanceCache
var _ appledger.BalanceCache = (*InMemoryBalanceCache)(nil)
