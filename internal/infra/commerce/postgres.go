package commerce

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/cartloop/insights/internal/domain/insights"
	"github.com/cartloop/insights/pkg/util"
)

// PostgresStores serves the orders, customers, and products snapshots
// from the platform database. One type implements all three ports since
// they share the pool and the sales window.
type PostgresStores struct {
	pool       *pgxpool.Pool
	windowDays int
	now        func() time.Time
}

// NewPostgresStores constructs the adapter. windowDays bounds the daily
// sales sample and splits the current/previous growth periods.
func NewPostgresStores(pool *pgxpool.Pool, windowDays int) *PostgresStores {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &PostgresStores{pool: pool, windowDays: windowDays, now: time.Now}
}

// ListOrders fetches order rows since the cutoff. Status exclusion
// happens in SQL so cancelled history never leaves the database.
func (s *PostgresStores) ListOrders(ctx context.Context, since time.Time, excludeStatuses []string) ([]insights.OrderRecord, error) {
	if excludeStatuses == nil {
		excludeStatuses = []string{}
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, customer_id, total_amount, status, created_at
		FROM orders
		WHERE created_at >= $1 AND NOT (lower(status) = ANY($2))
		ORDER BY created_at
	`, since, lowered(excludeStatuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]insights.OrderRecord, 0)
	for rows.Next() {
		var rec insights.OrderRecord
		if err := rows.Scan(&rec.ID, &rec.CustomerID, &rec.TotalAmount, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListCustomers fetches customers of a role with their completed
// orders attached, grouped in one pass over a left join.
func (s *PostgresStores) ListCustomers(ctx context.Context, role string) ([]insights.CustomerRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.created_at, o.created_at, o.total_amount
		FROM users u
		LEFT JOIN orders o ON o.customer_id = u.id AND o.status = 'completed'
		WHERE u.role = $1
		ORDER BY u.id, o.created_at
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]insights.CustomerRecord, 0)
	var current *insights.CustomerRecord
	for rows.Next() {
		var (
			id          uuid.UUID
			createdAt   time.Time
			orderAt     *time.Time
			orderAmount *float64
		)
		if err := rows.Scan(&id, &createdAt, &orderAt, &orderAmount); err != nil {
			return nil, err
		}
		if current == nil || current.ID != id {
			out = append(out, insights.CustomerRecord{ID: id, CreatedAt: createdAt})
			current = &out[len(out)-1]
		}
		if orderAt != nil && orderAmount != nil {
			current.CompletedOrders = append(current.CompletedOrders, insights.CompletedOrder{
				CreatedAt:   *orderAt,
				TotalAmount: *orderAmount,
			})
		}
	}
	return out, rows.Err()
}

// ListProducts assembles the per-product analytics snapshot: the base
// row, a dense daily unit-sales series over the window, and the
// current/previous period totals for growth and margin.
func (s *PostgresStores) ListProducts(ctx context.Context) ([]insights.ProductRecord, error) {
	products, err := s.baseProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	windowStart := util.DayOf(s.now().UTC().AddDate(0, 0, -s.windowDays))
	periodSplit := util.DayOf(s.now().UTC().AddDate(0, 0, -s.windowDays/2))

	daily, err := s.dailyUnitSales(ctx, windowStart)
	if err != nil {
		return nil, err
	}
	periods, err := s.periodTotals(ctx, windowStart, periodSplit)
	if err != nil {
		return nil, err
	}

	for i := range products {
		p := &products[i]
		p.DailySales = denseSeries(daily[p.ID], windowStart, s.windowDays)
		if t, ok := periods[p.ID]; ok {
			p.CurrentPeriodSales = t.current
			p.PreviousPeriodSales = t.previous
			p.Revenue = t.revenue
			p.Cost = t.cost
		}
	}
	return products, nil
}

func (s *PostgresStores) baseProducts(ctx context.Context) ([]insights.ProductRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, stock
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]insights.ProductRecord, 0)
	for rows.Next() {
		var rec insights.ProductRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.CurrentStock); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStores) dailyUnitSales(ctx context.Context, windowStart time.Time) (map[uuid.UUID]map[time.Time]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT oi.product_id, date_trunc('day', o.created_at AT TIME ZONE 'UTC') AS day, SUM(oi.quantity)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = 'completed' AND o.created_at >= $1
		GROUP BY oi.product_id, day
	`, windowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]map[time.Time]float64)
	for rows.Next() {
		var (
			productID uuid.UUID
			day       time.Time
			units     float64
		)
		if err := rows.Scan(&productID, &day, &units); err != nil {
			return nil, err
		}
		if out[productID] == nil {
			out[productID] = make(map[time.Time]float64)
		}
		out[productID][util.DayOf(day)] = units
	}
	return out, rows.Err()
}

type periodTotal struct {
	current  float64
	previous float64
	revenue  float64
	cost     float64
}

func (s *PostgresStores) periodTotals(ctx context.Context, windowStart, periodSplit time.Time) (map[uuid.UUID]periodTotal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT oi.product_id,
		       COALESCE(SUM(oi.quantity) FILTER (WHERE o.created_at >= $2), 0),
		       COALESCE(SUM(oi.quantity) FILTER (WHERE o.created_at < $2), 0),
		       COALESCE(SUM(oi.quantity * oi.unit_price), 0),
		       COALESCE(SUM(oi.quantity * p.unit_cost), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status = 'completed' AND o.created_at >= $1
		GROUP BY oi.product_id
	`, windowStart, periodSplit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]periodTotal)
	for rows.Next() {
		var (
			productID uuid.UUID
			t         periodTotal
		)
		if err := rows.Scan(&productID, &t.current, &t.previous, &t.revenue, &t.cost); err != nil {
			return nil, err
		}
		out[productID] = t
	}
	return out, rows.Err()
}

// UpsertMetricVector stores or refreshes a product's similarity vector.
func (s *PostgresStores) UpsertMetricVector(ctx context.Context, productID uuid.UUID, vector []float32) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO product_metrics (product_id, metric_vector, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (product_id)
		DO UPDATE SET metric_vector = EXCLUDED.metric_vector, updated_at = now()
	`, productID, pgvector.NewVector(vector))
	return err
}

// FindRelated returns the nearest products by metric vector. A product
// without a stored vector has no neighbors.
func (s *PostgresStores) FindRelated(ctx context.Context, productID uuid.UUID, limit int) ([]insights.RelatedProduct, error) {
	if limit <= 0 {
		limit = 5
	}
	var anchor pgvector.Vector
	err := s.pool.QueryRow(ctx, `
		SELECT metric_vector FROM product_metrics WHERE product_id = $1
	`, productID).Scan(&anchor)
	if err == pgx.ErrNoRows {
		return []insights.RelatedProduct{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT m.product_id, p.name, m.metric_vector <-> $2 AS distance
		FROM product_metrics m
		JOIN products p ON p.id = m.product_id
		WHERE m.product_id <> $1
		ORDER BY m.metric_vector <-> $2
		LIMIT $3
	`, productID, anchor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]insights.RelatedProduct, 0, limit)
	for rows.Next() {
		var rec insights.RelatedProduct
		if err := rows.Scan(&rec.ProductID, &rec.Name, &rec.Distance); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// denseSeries expands sparse day buckets into a contiguous window so
// zero-sales days weigh into the averages.
func denseSeries(buckets map[time.Time]float64, windowStart time.Time, days int) []float64 {
	out := make([]float64, days)
	for i := 0; i < days; i++ {
		out[i] = buckets[windowStart.AddDate(0, 0, i)]
	}
	return out
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

var (
	_ insights.OrderStore    = (*PostgresStores)(nil)
	_ insights.CustomerStore = (*PostgresStores)(nil)
	_ insights.ProductStore  = (*PostgresStores)(nil)
)
