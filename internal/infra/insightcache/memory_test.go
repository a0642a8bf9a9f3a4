package insightcache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cartloop/insights/internal/domain/insights"
)

func TestMemoryCacheSegmentRoundTrip(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	result := insights.RFMResult{
		CustomerID:     uuid.New(),
		RecencyScore:   5,
		FrequencyScore: 4,
		MonetaryScore:  3,
		Segment:        insights.SegmentChampions,
		ChurnRiskScore: 0.05,
	}
	require.NoError(t, cache.SaveSegment(ctx, result, time.Hour))

	got, found, err := cache.CustomerSegment(ctx, result.CustomerID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, result, got)
}

func TestMemoryCacheMiss(t *testing.T) {
	cache := NewMemoryCache()

	_, found, err := cache.CustomerSegment(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = cache.ProductAdvice(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	advice := insights.ProductAdvice{ProductID: uuid.New(), ComputedAt: time.Now()}
	require.NoError(t, cache.SaveProductAdvice(ctx, advice, time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, found, err := cache.ProductAdvice(ctx, advice.ProductID)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	advice := insights.ProductAdvice{ProductID: uuid.New()}
	require.NoError(t, cache.SaveProductAdvice(ctx, advice, 0))

	_, found, err := cache.ProductAdvice(ctx, advice.ProductID)
	require.NoError(t, err)
	require.True(t, found)
}
