package commerce

import "github.com/cartloop/insights/internal/domain/insights"

// Stores bundles the read models every commerce backend implements.
type Stores interface {
	insights.OrderStore
	insights.CustomerStore
	insights.ProductStore
}

var (
	_ Stores = (*MemoryStores)(nil)
	_ Stores = (*PostgresStores)(nil)
)
