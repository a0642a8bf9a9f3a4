package insights

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRecord is one order row as the platform stores it.
type OrderRecord struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	CreatedAt   time.Time
	TotalAmount float64
	Status      string
}

// CompletedOrder is the slim order view attached to a customer.
type CompletedOrder struct {
	CreatedAt   time.Time
	TotalAmount float64
}

// CustomerRecord is one customer with their completed order history.
type CustomerRecord struct {
	ID              uuid.UUID
	CreatedAt       time.Time
	CompletedOrders []CompletedOrder
}

// ProductRecord carries everything the inventory and portfolio engines
// need about one product.
type ProductRecord struct {
	ID                  uuid.UUID
	Name                string
	DailySales          []float64
	CurrentStock        int
	CurrentPeriodSales  float64
	PreviousPeriodSales float64
	Revenue             float64
	Cost                float64
}

// RelatedProduct is one nearest-neighbor match over product metric vectors.
type RelatedProduct struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Distance  float64   `json:"distance"`
}

// OrderStore reads order history snapshots.
type OrderStore interface {
	ListOrders(ctx context.Context, since time.Time, excludeStatuses []string) ([]OrderRecord, error)
}

// CustomerStore reads customer snapshots for a role.
type CustomerStore interface {
	ListCustomers(ctx context.Context, role string) ([]CustomerRecord, error)
}

// ProductStore reads product snapshots and serves similarity lookups
// over the metric vectors the service upserts after classification.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]ProductRecord, error)
	UpsertMetricVector(ctx context.Context, productID uuid.UUID, vector []float32) error
	FindRelated(ctx context.Context, productID uuid.UUID, limit int) ([]RelatedProduct, error)
}

// ProductAdvice bundles the cached per-product results.
type ProductAdvice struct {
	ProductID      uuid.UUID                `json:"productId"`
	Inventory      *InventoryRecommendation `json:"inventory,omitempty"`
	Classification *ProductClassification   `json:"classification,omitempty"`
	ComputedAt     time.Time                `json:"computedAt"`
}

// ResultCache holds the latest computed result per entity. The service
// writes through after each computation; only the read endpoints
// consult it. Cached values are never fed back into the engines.
type ResultCache interface {
	SaveSegment(ctx context.Context, result RFMResult, ttl time.Duration) error
	CustomerSegment(ctx context.Context, customerID uuid.UUID) (RFMResult, bool, error)
	SaveProductAdvice(ctx context.Context, advice ProductAdvice, ttl time.Duration) error
	ProductAdvice(ctx context.Context, productID uuid.UUID) (ProductAdvice, bool, error)
}

// ReportStorage receives exported snapshot reports.
type ReportStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) error
}
