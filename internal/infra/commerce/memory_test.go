package commerce

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cartloop/insights/internal/domain/insights"
)

func TestMemoryStoresListOrdersFilters(t *testing.T) {
	store := NewMemoryStores()
	cutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	store.SeedOrders(
		insights.OrderRecord{ID: uuid.New(), CreatedAt: cutoff.AddDate(0, 0, 5), TotalAmount: 40, Status: "completed"},
		insights.OrderRecord{ID: uuid.New(), CreatedAt: cutoff.AddDate(0, 0, 3), TotalAmount: 30, Status: "Cancelled"},
		insights.OrderRecord{ID: uuid.New(), CreatedAt: cutoff.AddDate(0, 0, -1), TotalAmount: 20, Status: "completed"},
	)

	orders, err := store.ListOrders(context.Background(), cutoff, []string{"cancelled"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 40.0, orders[0].TotalAmount)
}

func TestMemoryStoresListCustomersByRole(t *testing.T) {
	store := NewMemoryStores()
	store.SeedCustomer("customer", insights.CustomerRecord{ID: uuid.New()})
	store.SeedCustomer("admin", insights.CustomerRecord{ID: uuid.New()})

	customers, err := store.ListCustomers(context.Background(), "customer")
	require.NoError(t, err)
	require.Len(t, customers, 1)
}

func TestMemoryStoresFindRelated(t *testing.T) {
	store := NewMemoryStores()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	store.SeedProducts(
		insights.ProductRecord{ID: a, Name: "Kettle"},
		insights.ProductRecord{ID: b, Name: "Teapot"},
		insights.ProductRecord{ID: c, Name: "Mug"},
	)
	ctx := context.Background()
	require.NoError(t, store.UpsertMetricVector(ctx, a, []float32{1, 0, 0}))
	require.NoError(t, store.UpsertMetricVector(ctx, b, []float32{1, 0.1, 0}))
	require.NoError(t, store.UpsertMetricVector(ctx, c, []float32{0, 5, 5}))

	related, err := store.FindRelated(ctx, a, 2)
	require.NoError(t, err)
	require.Len(t, related, 2)
	require.Equal(t, b, related[0].ProductID)
	require.Equal(t, "Teapot", related[0].Name)
	require.Less(t, related[0].Distance, related[1].Distance)
}

func TestMemoryStoresFindRelatedNoVector(t *testing.T) {
	store := NewMemoryStores()
	related, err := store.FindRelated(context.Background(), uuid.New(), 5)
	require.NoError(t, err)
	require.Empty(t, related)
}
