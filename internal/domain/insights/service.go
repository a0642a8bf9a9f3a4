package insights

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/cartloop/insights/pkg/errors"
)

// Config tunes the orchestration layer around the pure engines.
type Config struct {
	HistoryDays        int
	DefaultHorizonDays int
	MaxHorizonDays     int
	LeadTimeDays       int
	ServiceLevel       float64
	ExcludeStatuses    []string
	CustomerRole       string
	CacheTTL           time.Duration
	RelatedLimit       int
}

// Service exposes the business intelligence computations over the
// platform's stores. Every call recomputes from a fresh snapshot; the
// engines themselves never touch I/O.
type Service interface {
	DemandForecast(ctx context.Context, horizonDays int) (ForecastResponse, error)
	SeasonalTrends(ctx context.Context) (SeasonalityResponse, error)
	CustomerSegments(ctx context.Context) (SegmentsResponse, error)
	CustomerSegment(ctx context.Context, customerID uuid.UUID) (RFMResult, bool, error)
	InventoryRecommendations(ctx context.Context) (InventoryResponse, error)
	PortfolioMatrix(ctx context.Context) (PortfolioResponse, error)
	ProductAdvice(ctx context.Context, productID uuid.UUID) (ProductAdvice, bool, error)
	RelatedProducts(ctx context.Context, productID uuid.UUID) ([]RelatedProduct, error)
	Overview(ctx context.Context) (OverviewResponse, error)
}

// ForecastResponse wraps the forecast with its insufficiency marker so
// the HTTP layer can serialize "not enough data yet" without errors.
type ForecastResponse struct {
	Insufficient  bool            `json:"insufficient"`
	Reason        string          `json:"reason,omitempty"`
	HorizonDays   int             `json:"horizonDays"`
	ObservedDays  int             `json:"observedDays"`
	Points        []ForecastPoint `json:"points,omitempty"`
	Slope         float64         `json:"slope"`
	Intercept     float64         `json:"intercept"`
	HorizonTotal  float64         `json:"horizonTotal"`
	LastObserved  *time.Time      `json:"lastObserved,omitempty"`
	ExcludedCount int             `json:"-"`
}

// SeasonalityResponse carries the summary or the insufficiency reason.
type SeasonalityResponse struct {
	Insufficient bool                `json:"insufficient"`
	Reason       string              `json:"reason,omitempty"`
	Months       int                 `json:"months"`
	Summary      *SeasonalitySummary `json:"summary,omitempty"`
}

// SegmentsResponse is the full segmentation of the customer base.
type SegmentsResponse struct {
	Customers int             `json:"customers"`
	Counts    map[Segment]int `json:"counts"`
	Results   []RFMResult     `json:"results"`
}

// ProductInventory pairs a product with its recommendation.
type ProductInventory struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	InventoryRecommendation
}

// InventoryResponse lists per-product recommendations; products with
// too little sales history are counted, not failed.
type InventoryResponse struct {
	Items   []ProductInventory `json:"items"`
	Skipped int                `json:"skipped"`
}

// PortfolioResponse is the classified product portfolio.
type PortfolioResponse struct {
	Items  []ProductClassification   `json:"items"`
	Counts map[PortfolioCategory]int `json:"counts"`
}

// OverviewResponse is the one-call snapshot used by the dashboard and
// the digest, optionally exported to report storage.
type OverviewResponse struct {
	GeneratedAt   time.Time                 `json:"generatedAt"`
	TotalRevenue  float64                   `json:"totalRevenue"`
	Orders        int                       `json:"orders"`
	Forecast      ForecastResponse          `json:"forecast"`
	Seasonality   SeasonalityResponse       `json:"seasonality"`
	SegmentCounts map[Segment]int           `json:"segmentCounts"`
	ActionCounts  map[StockAction]int       `json:"actionCounts"`
	Portfolio     map[PortfolioCategory]int `json:"portfolio"`
	ReportKey     string                    `json:"reportKey,omitempty"`
}

type service struct {
	cfg       Config
	orders    OrderStore
	customers CustomerStore
	products  ProductStore
	cache     ResultCache
	reports   ReportStorage
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the insights domain. reports may be nil when export
// is disabled.
func NewService(cfg Config, orders OrderStore, customers CustomerStore, products ProductStore, cache ResultCache, reports ReportStorage, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		orders:    orders,
		customers: customers,
		products:  products,
		cache:     cache,
		reports:   reports,
		logger:    logger.With("component", "insights.service"),
		now:       time.Now,
	}
}

const (
	reasonShortHistory = "not enough order history yet"
	reasonFewOrders    = "not enough orders for seasonal analysis yet"
)

func (s *service) DemandForecast(ctx context.Context, horizonDays int) (ForecastResponse, error) {
	if horizonDays == 0 {
		horizonDays = s.cfg.DefaultHorizonDays
	}
	if horizonDays < 1 || horizonDays > s.cfg.MaxHorizonDays {
		return ForecastResponse{}, apperrors.Wrap("invalid_input", "forecast horizon out of range", nil)
	}

	daily, _, err := s.dailySeries(ctx)
	if err != nil {
		return ForecastResponse{}, err
	}

	resp := ForecastResponse{HorizonDays: horizonDays, ObservedDays: len(daily)}
	forecast, ok := ForecastDemand(daily, horizonDays)
	if !ok {
		resp.Insufficient = true
		resp.Reason = reasonShortHistory
		return resp, nil
	}

	resp.Points = forecast.Points
	resp.Slope = forecast.Slope
	resp.Intercept = forecast.Intercept
	for _, pt := range forecast.Points {
		resp.HorizonTotal += pt.PredictedValue
	}
	last := daily[len(daily)-1].Date
	resp.LastObserved = &last

	s.logger.Info("demand forecast computed", "observed_days", len(daily), "horizon_days", horizonDays, "horizon_total", resp.HorizonTotal)
	return resp, nil
}

func (s *service) SeasonalTrends(ctx context.Context) (SeasonalityResponse, error) {
	monthly, err := s.monthlySeries(ctx)
	if err != nil {
		return SeasonalityResponse{}, err
	}

	resp := SeasonalityResponse{Months: len(monthly)}
	summary, ok := DetectSeasonality(monthly)
	if !ok {
		resp.Insufficient = true
		resp.Reason = reasonFewOrders
		return resp, nil
	}
	resp.Summary = &summary

	s.logger.Info("seasonality computed", "months", len(monthly), "peak", summary.PeakMonth, "trough", summary.TroughMonth, "trend", summary.TrendDirection)
	return resp, nil
}

func (s *service) CustomerSegments(ctx context.Context) (SegmentsResponse, error) {
	customers, err := s.customers.ListCustomers(ctx, s.cfg.CustomerRole)
	if err != nil {
		return SegmentsResponse{}, apperrors.Wrap("store_error", "failed to list customers", err)
	}

	profiles := s.buildProfiles(customers)
	results := SegmentCustomers(profiles)

	counts := make(map[Segment]int)
	for _, r := range results {
		counts[r.Segment]++
		if err := s.cache.SaveSegment(ctx, r, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("segment cache write failed", "customer_id", r.CustomerID, "error", err)
		}
	}

	s.logger.Info("customer segments computed", "customers", len(results))
	return SegmentsResponse{Customers: len(results), Counts: counts, Results: results}, nil
}

func (s *service) CustomerSegment(ctx context.Context, customerID uuid.UUID) (RFMResult, bool, error) {
	result, found, err := s.cache.CustomerSegment(ctx, customerID)
	if err != nil {
		return RFMResult{}, false, apperrors.Wrap("cache_error", "failed to read cached segment", err)
	}
	return result, found, nil
}

func (s *service) InventoryRecommendations(ctx context.Context) (InventoryResponse, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return InventoryResponse{}, apperrors.Wrap("store_error", "failed to list products", err)
	}

	opts := InventoryOptions{LeadTimeDays: s.cfg.LeadTimeDays, ServiceLevel: s.cfg.ServiceLevel}
	resp := InventoryResponse{Items: make([]ProductInventory, 0, len(products))}
	for _, p := range products {
		rec, ok := OptimizeInventory(p.DailySales, p.CurrentStock, opts)
		if !ok {
			resp.Skipped++
			continue
		}
		resp.Items = append(resp.Items, ProductInventory{ProductID: p.ID, Name: p.Name, InventoryRecommendation: rec})
		s.upsertAdvice(ctx, p.ID, &rec, nil)
	}

	s.logger.Info("inventory recommendations computed", "products", len(products), "skipped", resp.Skipped)
	return resp, nil
}

func (s *service) PortfolioMatrix(ctx context.Context) (PortfolioResponse, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return PortfolioResponse{}, apperrors.Wrap("store_error", "failed to list products", err)
	}

	performance := make([]ProductPerformance, len(products))
	for i, p := range products {
		performance[i] = ProductPerformance{
			ProductID:           p.ID,
			CurrentPeriodSales:  p.CurrentPeriodSales,
			PreviousPeriodSales: p.PreviousPeriodSales,
			Revenue:             p.Revenue,
			Cost:                p.Cost,
		}
	}

	items := ClassifyPortfolio(performance)
	counts := make(map[PortfolioCategory]int)
	for i, item := range items {
		counts[item.Category]++
		s.upsertAdvice(ctx, item.ProductID, nil, &items[i])
		vector := metricVector(item, mean(products[i].DailySales))
		if err := s.products.UpsertMetricVector(ctx, item.ProductID, vector); err != nil {
			s.logger.Warn("metric vector upsert failed", "product_id", item.ProductID, "error", err)
		}
	}

	s.logger.Info("portfolio classified", "products", len(items))
	return PortfolioResponse{Items: items, Counts: counts}, nil
}

func (s *service) ProductAdvice(ctx context.Context, productID uuid.UUID) (ProductAdvice, bool, error) {
	advice, found, err := s.cache.ProductAdvice(ctx, productID)
	if err != nil {
		return ProductAdvice{}, false, apperrors.Wrap("cache_error", "failed to read cached advice", err)
	}
	return advice, found, nil
}

func (s *service) RelatedProducts(ctx context.Context, productID uuid.UUID) ([]RelatedProduct, error) {
	related, err := s.products.FindRelated(ctx, productID, s.cfg.RelatedLimit)
	if err != nil {
		return nil, apperrors.Wrap("store_error", "failed to find related products", err)
	}
	return related, nil
}

func (s *service) Overview(ctx context.Context) (OverviewResponse, error) {
	daily, orders, err := s.dailySeries(ctx)
	if err != nil {
		return OverviewResponse{}, err
	}

	resp := OverviewResponse{GeneratedAt: s.now().UTC(), Orders: orders}
	for _, pt := range daily {
		resp.TotalRevenue += pt.Value
	}

	forecast, err := s.DemandForecast(ctx, s.cfg.DefaultHorizonDays)
	if err != nil {
		return OverviewResponse{}, err
	}
	resp.Forecast = forecast

	seasonality, err := s.SeasonalTrends(ctx)
	if err != nil {
		return OverviewResponse{}, err
	}
	resp.Seasonality = seasonality

	segments, err := s.CustomerSegments(ctx)
	if err != nil {
		return OverviewResponse{}, err
	}
	resp.SegmentCounts = segments.Counts

	inventory, err := s.InventoryRecommendations(ctx)
	if err != nil {
		return OverviewResponse{}, err
	}
	resp.ActionCounts = make(map[StockAction]int)
	for _, item := range inventory.Items {
		resp.ActionCounts[item.Action]++
	}

	portfolio, err := s.PortfolioMatrix(ctx)
	if err != nil {
		return OverviewResponse{}, err
	}
	resp.Portfolio = portfolio.Counts

	resp.ReportKey = s.exportReport(ctx, resp)
	return resp, nil
}

// exportReport writes the snapshot to report storage; failures degrade
// to an unexported overview, never a failed request.
func (s *service) exportReport(ctx context.Context, overview OverviewResponse) string {
	if s.reports == nil {
		return ""
	}
	payload, err := json.Marshal(overview)
	if err != nil {
		s.logger.Error("overview report marshal failed", "error", err)
		return ""
	}
	key := "reports/overview-" + overview.GeneratedAt.Format("20060102T150405Z") + ".json"
	if err := s.reports.Put(ctx, key, payload, "application/json"); err != nil {
		s.logger.Warn("overview report export failed", "key", key, "error", err)
		return ""
	}
	s.logger.Info("overview report exported", "key", key)
	return key
}

func (s *service) dailySeries(ctx context.Context) ([]TimePoint, int, error) {
	records, err := s.salesRecords(ctx)
	if err != nil {
		return nil, 0, err
	}
	return AggregateDaily(records, s.cfg.ExcludeStatuses), len(records), nil
}

func (s *service) monthlySeries(ctx context.Context) ([]MonthPoint, error) {
	records, err := s.salesRecords(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateMonthly(records, s.cfg.ExcludeStatuses), nil
}

func (s *service) salesRecords(ctx context.Context) ([]SalesRecord, error) {
	since := s.now().UTC().AddDate(0, 0, -s.cfg.HistoryDays)
	orders, err := s.orders.ListOrders(ctx, since, s.cfg.ExcludeStatuses)
	if err != nil {
		return nil, apperrors.Wrap("store_error", "failed to list orders", err)
	}
	records := make([]SalesRecord, len(orders))
	for i, o := range orders {
		records[i] = SalesRecord{OccurredAt: o.CreatedAt, Amount: o.TotalAmount, Status: o.Status}
	}
	return records, nil
}

// buildProfiles shapes store records into the RFM input. Customers
// without completed orders fall back to their signup date for recency.
func (s *service) buildProfiles(customers []CustomerRecord) []CustomerProfile {
	now := s.now().UTC()
	profiles := make([]CustomerProfile, len(customers))
	for i, c := range customers {
		var (
			last     = c.CreatedAt
			monetary float64
		)
		for _, o := range c.CompletedOrders {
			monetary += o.TotalAmount
			if o.CreatedAt.After(last) {
				last = o.CreatedAt
			}
		}
		recency := now.Sub(last).Hours() / 24
		if recency < 0 {
			recency = 0
		}
		profiles[i] = CustomerProfile{
			CustomerID:  c.ID,
			RecencyDays: math.Floor(recency),
			Frequency:   len(c.CompletedOrders),
			Monetary:    monetary,
		}
	}
	return profiles
}

func (s *service) upsertAdvice(ctx context.Context, productID uuid.UUID, inventory *InventoryRecommendation, classification *ProductClassification) {
	existing, found, err := s.cache.ProductAdvice(ctx, productID)
	if err != nil {
		s.logger.Warn("advice cache read failed", "product_id", productID, "error", err)
	}
	if !found {
		existing = ProductAdvice{ProductID: productID}
	}
	if inventory != nil {
		existing.Inventory = inventory
	}
	if classification != nil {
		existing.Classification = classification
	}
	existing.ComputedAt = s.now().UTC()
	if err := s.cache.SaveProductAdvice(ctx, existing, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("advice cache write failed", "product_id", productID, "error", err)
	}
}

// metricVector is the similarity embedding for a product: growth and
// margin as fractions plus daily sales velocity.
func metricVector(c ProductClassification, avgDailySales float64) []float32 {
	return []float32{
		float32(c.GrowthRate / 100),
		float32(c.ProfitMargin / 100),
		float32(avgDailySales),
	}
}
