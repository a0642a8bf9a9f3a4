package insightcache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cartloop/insights/internal/domain/insights"
)

type segmentEntry struct {
	payload   insights.RFMResult
	expiresAt time.Time
}

type adviceEntry struct {
	payload   insights.ProductAdvice
	expiresAt time.Time
}

// MemoryCache is an in-memory result cache for tests/dev.
type MemoryCache struct {
	mu       sync.RWMutex
	segments map[uuid.UUID]segmentEntry
	advice   map[uuid.UUID]adviceEntry
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		segments: make(map[uuid.UUID]segmentEntry),
		advice:   make(map[uuid.UUID]adviceEntry),
	}
}

// SaveSegment implements insights.ResultCache.
func (c *MemoryCache) SaveSegment(_ context.Context, result insights.RFMResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.segments[result.CustomerID] = segmentEntry{payload: result, expiresAt: expiry(ttl)}
	return nil
}

// CustomerSegment implements insights.ResultCache.
func (c *MemoryCache) CustomerSegment(_ context.Context, customerID uuid.UUID) (insights.RFMResult, bool, error) {
	c.mu.RLock()
	entry, ok := c.segments[customerID]
	c.mu.RUnlock()
	if !ok {
		return insights.RFMResult{}, false, nil
	}
	if hasExpired(entry.expiresAt) {
		c.mu.Lock()
		delete(c.segments, customerID)
		c.mu.Unlock()
		return insights.RFMResult{}, false, nil
	}
	return entry.payload, true, nil
}

// SaveProductAdvice implements insights.ResultCache.
func (c *MemoryCache) SaveProductAdvice(_ context.Context, advice insights.ProductAdvice, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advice[advice.ProductID] = adviceEntry{payload: advice, expiresAt: expiry(ttl)}
	return nil
}

// ProductAdvice implements insights.ResultCache.
func (c *MemoryCache) ProductAdvice(_ context.Context, productID uuid.UUID) (insights.ProductAdvice, bool, error) {
	c.mu.RLock()
	entry, ok := c.advice[productID]
	c.mu.RUnlock()
	if !ok {
		return insights.ProductAdvice{}, false, nil
	}
	if hasExpired(entry.expiresAt) {
		c.mu.Lock()
		delete(c.advice, productID)
		c.mu.Unlock()
		return insights.ProductAdvice{}, false, nil
	}
	return entry.payload, true, nil
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ insights.ResultCache = (*MemoryCache)(nil)
