package commerce

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cartloop/insights/internal/domain/insights"
)

// MemoryStores is an in-memory commerce snapshot used for tests/dev.
// Seed it directly; the zero value is usable.
type MemoryStores struct {
	mu        sync.RWMutex
	orders    []insights.OrderRecord
	customers []insights.CustomerRecord
	products  []insights.ProductRecord
	vectors   map[uuid.UUID][]float32
	roles     map[uuid.UUID]string
}

// NewMemoryStores constructs an empty in-memory snapshot.
func NewMemoryStores() *MemoryStores {
	return &MemoryStores{
		vectors: make(map[uuid.UUID][]float32),
		roles:   make(map[uuid.UUID]string),
	}
}

// SeedOrders appends order rows.
func (m *MemoryStores) SeedOrders(orders ...insights.OrderRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, orders...)
}

// SeedCustomer appends a customer with a role.
func (m *MemoryStores) SeedCustomer(role string, customer insights.CustomerRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = append(m.customers, customer)
	m.roles[customer.ID] = role
}

// SeedProducts appends product rows.
func (m *MemoryStores) SeedProducts(products ...insights.ProductRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, products...)
}

// ListOrders implements insights.OrderStore.
func (m *MemoryStores) ListOrders(_ context.Context, since time.Time, excludeStatuses []string) ([]insights.OrderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	excluded := make(map[string]struct{}, len(excludeStatuses))
	for _, s := range excludeStatuses {
		excluded[strings.ToLower(s)] = struct{}{}
	}
	out := make([]insights.OrderRecord, 0, len(m.orders))
	for _, o := range m.orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		if _, skip := excluded[strings.ToLower(o.Status)]; skip {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListCustomers implements insights.CustomerStore.
func (m *MemoryStores) ListCustomers(_ context.Context, role string) ([]insights.CustomerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]insights.CustomerRecord, 0, len(m.customers))
	for _, c := range m.customers {
		if m.roles[c.ID] != role {
			continue
		}
		clone := c
		clone.CompletedOrders = append([]insights.CompletedOrder(nil), c.CompletedOrders...)
		out = append(out, clone)
	}
	return out, nil
}

// ListProducts implements insights.ProductStore.
func (m *MemoryStores) ListProducts(_ context.Context) ([]insights.ProductRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]insights.ProductRecord, len(m.products))
	for i, p := range m.products {
		clone := p
		clone.DailySales = append([]float64(nil), p.DailySales...)
		out[i] = clone
	}
	return out, nil
}

// UpsertMetricVector implements insights.ProductStore.
func (m *MemoryStores) UpsertMetricVector(_ context.Context, productID uuid.UUID, vector []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[productID] = append([]float32(nil), vector...)
	return nil
}

// FindRelated implements insights.ProductStore with a linear scan.
func (m *MemoryStores) FindRelated(_ context.Context, productID uuid.UUID, limit int) ([]insights.RelatedProduct, error) {
	if limit <= 0 {
		limit = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	anchor, ok := m.vectors[productID]
	if !ok {
		return []insights.RelatedProduct{}, nil
	}
	names := make(map[uuid.UUID]string, len(m.products))
	for _, p := range m.products {
		names[p.ID] = p.Name
	}
	out := make([]insights.RelatedProduct, 0, len(m.vectors))
	for id, v := range m.vectors {
		if id == productID {
			continue
		}
		out = append(out, insights.RelatedProduct{
			ProductID: id,
			Name:      names[id],
			Distance:  euclideanDistance(anchor, v),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func euclideanDistance(a, b []float32) float64 {
	length := len(a)
	if len(b) < length {
		length = len(b)
	}
	var sum float64
	for i := 0; i < length; i++ {
		diff := float64(a[i] - b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

var (
	_ insights.OrderStore    = (*MemoryStores)(nil)
	_ insights.CustomerStore = (*MemoryStores)(nil)
	_ insights.ProductStore  = (*MemoryStores)(nil)
)
