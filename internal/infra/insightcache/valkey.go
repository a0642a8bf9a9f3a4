package insightcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/cartloop/insights/internal/domain/insights"
)

// ValkeyCache holds the latest computed result per entity in a
// Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs the cache adapter.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "insights"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

// SaveSegment implements insights.ResultCache.
func (c *ValkeyCache) SaveSegment(ctx context.Context, result insights.RFMResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.setString(ctx, c.segmentKey(result.CustomerID), string(payload), ttl)
}

// CustomerSegment implements insights.ResultCache.
func (c *ValkeyCache) CustomerSegment(ctx context.Context, customerID uuid.UUID) (insights.RFMResult, bool, error) {
	var result insights.RFMResult
	found, err := c.getJSON(ctx, c.segmentKey(customerID), &result)
	return result, found, err
}

// SaveProductAdvice implements insights.ResultCache.
func (c *ValkeyCache) SaveProductAdvice(ctx context.Context, advice insights.ProductAdvice, ttl time.Duration) error {
	payload, err := json.Marshal(advice)
	if err != nil {
		return err
	}
	return c.setString(ctx, c.adviceKey(advice.ProductID), string(payload), ttl)
}

// ProductAdvice implements insights.ResultCache.
func (c *ValkeyCache) ProductAdvice(ctx context.Context, productID uuid.UUID) (insights.ProductAdvice, bool, error) {
	var advice insights.ProductAdvice
	found, err := c.getJSON(ctx, c.adviceKey(productID), &advice)
	return advice, found, err
}

func (c *ValkeyCache) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	result := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	payload, err := result.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ValkeyCache) setString(ctx context.Context, key, value string, ttl time.Duration) error {
	builder := c.client.B().Set().Key(key).Value(value)
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) segmentKey(customerID uuid.UUID) string {
	return fmt.Sprintf("%s:segment:%s", c.prefix, customerID)
}

func (c *ValkeyCache) adviceKey(productID uuid.UUID) string {
	return fmt.Sprintf("%s:advice:%s", c.prefix, productID)
}

var _ insights.ResultCache = (*ValkeyCache)(nil)
