package insights

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cartloop/insights/pkg/errors"
)

type stubOrderStore struct {
	orders    []OrderRecord
	lastSince time.Time
	err       error
}

func (s *stubOrderStore) ListOrders(_ context.Context, since time.Time, _ []string) ([]OrderRecord, error) {
	s.lastSince = since
	return s.orders, s.err
}

type stubCustomerStore struct {
	customers []CustomerRecord
	lastRole  string
	err       error
}

func (s *stubCustomerStore) ListCustomers(_ context.Context, role string) ([]CustomerRecord, error) {
	s.lastRole = role
	return s.customers, s.err
}

type stubProductStore struct {
	products []ProductRecord
	vectors  map[uuid.UUID][]float32
	related  []RelatedProduct
	err      error
}

func (s *stubProductStore) ListProducts(context.Context) ([]ProductRecord, error) {
	return s.products, s.err
}

func (s *stubProductStore) UpsertMetricVector(_ context.Context, productID uuid.UUID, vector []float32) error {
	if s.vectors == nil {
		s.vectors = map[uuid.UUID][]float32{}
	}
	s.vectors[productID] = vector
	return nil
}

func (s *stubProductStore) FindRelated(context.Context, uuid.UUID, int) ([]RelatedProduct, error) {
	return s.related, s.err
}

type stubCache struct {
	segments map[uuid.UUID]RFMResult
	advice   map[uuid.UUID]ProductAdvice
	readErr  error
}

func newStubCache() *stubCache {
	return &stubCache{segments: map[uuid.UUID]RFMResult{}, advice: map[uuid.UUID]ProductAdvice{}}
}

func (c *stubCache) SaveSegment(_ context.Context, result RFMResult, _ time.Duration) error {
	c.segments[result.CustomerID] = result
	return nil
}

func (c *stubCache) CustomerSegment(_ context.Context, customerID uuid.UUID) (RFMResult, bool, error) {
	if c.readErr != nil {
		return RFMResult{}, false, c.readErr
	}
	r, ok := c.segments[customerID]
	return r, ok, nil
}

func (c *stubCache) SaveProductAdvice(_ context.Context, advice ProductAdvice, _ time.Duration) error {
	c.advice[advice.ProductID] = advice
	return nil
}

func (c *stubCache) ProductAdvice(_ context.Context, productID uuid.UUID) (ProductAdvice, bool, error) {
	if c.readErr != nil {
		return ProductAdvice{}, false, c.readErr
	}
	a, ok := c.advice[productID]
	return a, ok, nil
}

type stubReports struct {
	keys []string
	err  error
}

func (r *stubReports) Put(_ context.Context, key string, _ []byte, _ string) error {
	if r.err != nil {
		return r.err
	}
	r.keys = append(r.keys, key)
	return nil
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		HistoryDays:        90,
		DefaultHorizonDays: 30,
		MaxHorizonDays:     90,
		LeadTimeDays:       7,
		ServiceLevel:       0.95,
		ExcludeStatuses:    []string{"cancelled", "refunded"},
		CustomerRole:       "customer",
		CacheTTL:           time.Hour,
		RelatedLimit:       5,
	}
}

func newTestService(orders *stubOrderStore, customers *stubCustomerStore, products *stubProductStore, cache *stubCache, reports ReportStorage) *service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(testConfig(), orders, customers, products, cache, reports, logger).(*service)
	svc.now = func() time.Time { return testNow }
	return svc
}

// linearOrders lays one order per day for the last n days, with totals
// growing linearly so the fit is exact.
func linearOrders(n int) []OrderRecord {
	out := make([]OrderRecord, n)
	for i := 0; i < n; i++ {
		out[i] = OrderRecord{
			ID:          uuid.New(),
			CreatedAt:   testNow.AddDate(0, 0, i-n),
			TotalAmount: float64(2*i + 10),
			Status:      "completed",
		}
	}
	return out
}

func TestDemandForecastHorizonOutOfRange(t *testing.T) {
	svc := newTestService(&stubOrderStore{}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	_, err := svc.DemandForecast(context.Background(), 365)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.DemandForecast(context.Background(), -1)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestDemandForecastDefaultsHorizon(t *testing.T) {
	svc := newTestService(&stubOrderStore{orders: linearOrders(10)}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	resp, err := svc.DemandForecast(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 30, resp.HorizonDays)
	require.Len(t, resp.Points, 30)
}

func TestDemandForecastInsufficientHistory(t *testing.T) {
	svc := newTestService(&stubOrderStore{orders: linearOrders(3)}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	resp, err := svc.DemandForecast(context.Background(), 14)
	require.NoError(t, err)
	require.True(t, resp.Insufficient)
	require.Equal(t, reasonShortHistory, resp.Reason)
	require.Equal(t, 3, resp.ObservedDays)
	require.Empty(t, resp.Points)
}

func TestDemandForecastComputed(t *testing.T) {
	orders := &stubOrderStore{orders: linearOrders(10)}
	svc := newTestService(orders, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	resp, err := svc.DemandForecast(context.Background(), 5)
	require.NoError(t, err)
	require.False(t, resp.Insufficient)
	require.Equal(t, 10, resp.ObservedDays)
	require.Len(t, resp.Points, 5)
	require.InDelta(t, 2.0, resp.Slope, 1e-9)
	// Continuation of 2i+10 for i = 10..14 sums to 170.
	require.InDelta(t, 170.0, resp.HorizonTotal, 1e-9)
	require.NotNil(t, resp.LastObserved)

	// The history window is anchored at the configured lookback.
	require.Equal(t, testNow.AddDate(0, 0, -90), orders.lastSince)
}

func TestDemandForecastStoreFailure(t *testing.T) {
	svc := newTestService(&stubOrderStore{err: errors.New("pg down")}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	_, err := svc.DemandForecast(context.Background(), 14)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "store_error"))
}

func TestSeasonalTrendsInsufficient(t *testing.T) {
	svc := newTestService(&stubOrderStore{orders: linearOrders(10)}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	resp, err := svc.SeasonalTrends(context.Background())
	require.NoError(t, err)
	require.True(t, resp.Insufficient)
	require.Equal(t, reasonFewOrders, resp.Reason)
	require.Nil(t, resp.Summary)
}

func TestSeasonalTrendsComputed(t *testing.T) {
	svc := newTestService(&stubOrderStore{orders: linearOrders(60)}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	resp, err := svc.SeasonalTrends(context.Background())
	require.NoError(t, err)
	require.False(t, resp.Insufficient)
	require.NotNil(t, resp.Summary)
	require.NotEmpty(t, resp.Summary.MonthlyIndex)
}

func TestCustomerSegmentsWriteThrough(t *testing.T) {
	customers := make([]CustomerRecord, 5)
	for i := range customers {
		customers[i] = CustomerRecord{
			ID:        uuid.New(),
			CreatedAt: testNow.AddDate(0, 0, -365),
			CompletedOrders: []CompletedOrder{
				{CreatedAt: testNow.AddDate(0, 0, -i*30-1), TotalAmount: float64(100 * (i + 1))},
			},
		}
	}
	store := &stubCustomerStore{customers: customers}
	cache := newStubCache()
	svc := newTestService(&stubOrderStore{}, store, &stubProductStore{}, cache, nil)

	resp, err := svc.CustomerSegments(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, resp.Customers)
	require.Len(t, resp.Results, 5)
	require.Equal(t, "customer", store.lastRole)

	total := 0
	for _, n := range resp.Counts {
		total += n
	}
	require.Equal(t, 5, total)

	// Every result lands in the cache and can be read back individually.
	for _, r := range resp.Results {
		cached, found, err := svc.CustomerSegment(context.Background(), r.CustomerID)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, r, cached)
	}
}

func TestCustomerSegmentCacheMiss(t *testing.T) {
	svc := newTestService(&stubOrderStore{}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	_, found, err := svc.CustomerSegment(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, found)
}

func TestCustomerSegmentCacheFailure(t *testing.T) {
	cache := newStubCache()
	cache.readErr = errors.New("valkey down")
	svc := newTestService(&stubOrderStore{}, &stubCustomerStore{}, &stubProductStore{}, cache, nil)

	_, _, err := svc.CustomerSegment(context.Background(), uuid.New())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "cache_error"))
}

func TestBuildProfilesRecencyFallsBackToSignup(t *testing.T) {
	svc := newTestService(&stubOrderStore{}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	id := uuid.New()
	profiles := svc.buildProfiles([]CustomerRecord{
		{ID: id, CreatedAt: testNow.AddDate(0, 0, -40)},
	})
	require.Len(t, profiles, 1)
	require.Equal(t, id, profiles[0].CustomerID)
	require.Equal(t, 40.0, profiles[0].RecencyDays)
	require.Equal(t, 0, profiles[0].Frequency)
	require.Equal(t, 0.0, profiles[0].Monetary)
}

func TestBuildProfilesUsesNewestOrder(t *testing.T) {
	svc := newTestService(&stubOrderStore{}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	profiles := svc.buildProfiles([]CustomerRecord{
		{
			ID:        uuid.New(),
			CreatedAt: testNow.AddDate(0, 0, -400),
			CompletedOrders: []CompletedOrder{
				{CreatedAt: testNow.AddDate(0, 0, -90), TotalAmount: 50},
				{CreatedAt: testNow.AddDate(0, 0, -10), TotalAmount: 75},
			},
		},
	})
	require.Equal(t, 10.0, profiles[0].RecencyDays)
	require.Equal(t, 2, profiles[0].Frequency)
	require.Equal(t, 125.0, profiles[0].Monetary)
}

func TestInventoryRecommendationsSkipsShortHistory(t *testing.T) {
	healthy := uuid.New()
	thin := uuid.New()
	products := &stubProductStore{products: []ProductRecord{
		{ID: healthy, Name: "Kettle", DailySales: []float64{10, 10, 10, 10, 10, 10, 10}, CurrentStock: 5},
		{ID: thin, Name: "Teapot", DailySales: []float64{3, 4}, CurrentStock: 50},
	}}
	cache := newStubCache()
	svc := newTestService(&stubOrderStore{}, &stubCustomerStore{}, products, cache, nil)

	resp, err := svc.InventoryRecommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, 1, resp.Skipped)
	require.Equal(t, healthy, resp.Items[0].ProductID)
	require.Equal(t, "Kettle", resp.Items[0].Name)
	require.Equal(t, ActionUrgentReorder, resp.Items[0].Action)

	advice, found, err := svc.ProductAdvice(context.Background(), healthy)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, advice.Inventory)
	require.Nil(t, advice.Classification)
	require.Equal(t, testNow, advice.ComputedAt)

	_, found, err = svc.ProductAdvice(context.Background(), thin)
	require.NoError(t, err)
	require.False(t, found)
}

func TestPortfolioMatrixClassifiesAndEmbeds(t *testing.T) {
	winner := uuid.New()
	laggard := uuid.New()
	products := &stubProductStore{products: []ProductRecord{
		{ID: winner, Name: "Kettle", DailySales: []float64{10, 10, 10, 10, 10, 10, 10}, CurrentPeriodSales: 200, PreviousPeriodSales: 100, Revenue: 1000, Cost: 400},
		{ID: laggard, Name: "Teapot", DailySales: []float64{1, 1, 1, 1, 1, 1, 1}, CurrentPeriodSales: 50, PreviousPeriodSales: 100, Revenue: 1000, Cost: 900},
	}}
	cache := newStubCache()
	svc := newTestService(&stubOrderStore{}, &stubCustomerStore{}, products, cache, nil)

	resp, err := svc.PortfolioMatrix(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	require.Equal(t, 1, resp.Counts[CategoryStar])
	require.Equal(t, 1, resp.Counts[CategoryDog])

	require.Len(t, products.vectors, 2)
	require.InDelta(t, 1.0, float64(products.vectors[winner][0]), 1e-6)  // 100% growth
	require.InDelta(t, 0.6, float64(products.vectors[winner][1]), 1e-6)  // 60% margin
	require.InDelta(t, 10.0, float64(products.vectors[winner][2]), 1e-6) // velocity

	advice, found, err := svc.ProductAdvice(context.Background(), winner)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, advice.Classification)
	require.Equal(t, CategoryStar, advice.Classification.Category)
}

func TestProductAdviceMergesInventoryAndClassification(t *testing.T) {
	id := uuid.New()
	products := &stubProductStore{products: []ProductRecord{
		{ID: id, Name: "Kettle", DailySales: []float64{10, 10, 10, 10, 10, 10, 10}, CurrentStock: 140, CurrentPeriodSales: 200, PreviousPeriodSales: 100, Revenue: 1000, Cost: 400},
	}}
	svc := newTestService(&stubOrderStore{}, &stubCustomerStore{}, products, newStubCache(), nil)

	_, err := svc.InventoryRecommendations(context.Background())
	require.NoError(t, err)
	_, err = svc.PortfolioMatrix(context.Background())
	require.NoError(t, err)

	advice, found, err := svc.ProductAdvice(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, advice.Inventory)
	require.NotNil(t, advice.Classification)
}

func TestRelatedProducts(t *testing.T) {
	neighbor := RelatedProduct{ProductID: uuid.New(), Name: "Teapot", Distance: 0.12}
	products := &stubProductStore{related: []RelatedProduct{neighbor}}
	svc := newTestService(&stubOrderStore{}, &stubCustomerStore{}, products, newStubCache(), nil)

	related, err := svc.RelatedProducts(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, []RelatedProduct{neighbor}, related)
}

func TestOverviewExportsReport(t *testing.T) {
	reports := &stubReports{}
	svc := newTestService(&stubOrderStore{orders: linearOrders(10)}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), reports)

	resp, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, testNow, resp.GeneratedAt)
	require.Equal(t, 10, resp.Orders)
	// Totals of 2i+10 for i = 0..9.
	require.InDelta(t, 190.0, resp.TotalRevenue, 1e-9)
	require.False(t, resp.Forecast.Insufficient)
	require.True(t, resp.Seasonality.Insufficient)
	require.NotEmpty(t, resp.ReportKey)
	require.Equal(t, []string{resp.ReportKey}, reports.keys)
}

func TestOverviewWithoutReportStorage(t *testing.T) {
	svc := newTestService(&stubOrderStore{orders: linearOrders(10)}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), nil)

	resp, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Empty(t, resp.ReportKey)
}

func TestOverviewDegradesOnReportFailure(t *testing.T) {
	reports := &stubReports{err: errors.New("bucket gone")}
	svc := newTestService(&stubOrderStore{orders: linearOrders(10)}, &stubCustomerStore{}, &stubProductStore{}, newStubCache(), reports)

	resp, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Empty(t, resp.ReportKey)
}
