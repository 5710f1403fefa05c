package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/dataset/datasettest"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/deppfellow/storefront-analytics/internal/window"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snap        dataset.Snapshot
	err         error
	calls       int
	hadDeadline bool
}

func (f *fakeSource) LoadSnapshot(ctx context.Context) (dataset.Snapshot, error) {
	f.calls++
	_, f.hadDeadline = ctx.Deadline()
	return f.snap, f.err
}

var asOf = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func newTestService(src *fakeSource, opts AnalyticsOptions) *AnalyticsService {
	log := zerolog.Nop()
	return NewAnalyticsService(src, func() time.Time { return asOf }, opts, &log)
}

func janMarFixture() *datasettest.Builder {
	return datasettest.New().
		Customer(1, "Ada", "Boston").
		Amount(1, 1, datasettest.Date(2024, time.January, 10), 100).
		Amount(2, 1, datasettest.Date(2024, time.March, 10), 150)
}

func TestAnalyticsService_TrendsUseConfiguredPolicy(t *testing.T) {
	src := &fakeSource{snap: janMarFixture().Snapshot()}
	svc := newTestService(src, AnalyticsOptions{GrowthPolicy: window.CalendarAdjacent})

	rep, err := svc.MonthlyTrends(context.Background(), &TrendsRequest{Year: 2024})

	require.NoError(t, err)
	assert.Equal(t, window.CalendarAdjacent, rep.GrowthPolicy)
	require.Len(t, rep.Months, 2)
	assert.Equal(t, 3, rep.Months[1].Month)
	assert.Equal(t, 0.0, rep.Months[1].GrowthRate)
}

func TestAnalyticsService_TrendsRequestOverridesPolicy(t *testing.T) {
	src := &fakeSource{snap: janMarFixture().Snapshot()}
	svc := newTestService(src, AnalyticsOptions{GrowthPolicy: window.CalendarAdjacent})

	rep, err := svc.MonthlyTrends(context.Background(), &TrendsRequest{Year: 2024, GrowthPolicy: "previous_present"})

	require.NoError(t, err)
	require.Len(t, rep.Months, 2)
	assert.Equal(t, 50.0, rep.Months[1].GrowthRate)
}

func TestAnalyticsService_LoadsFreshSnapshotWithTimeout(t *testing.T) {
	src := &fakeSource{snap: janMarFixture().Snapshot()}
	svc := newTestService(src, AnalyticsOptions{LoadTimeout: time.Second})

	_, err := svc.ABC(context.Background(), NoParams{})
	require.NoError(t, err)
	_, err = svc.ProductPerformance(context.Background(), NoParams{})
	require.NoError(t, err)

	assert.Equal(t, 2, src.calls)
	assert.True(t, src.hadDeadline)
}

func TestAnalyticsService_SourceErrorIsWrapped(t *testing.T) {
	sourceErr := errs.NewSourceError("snapshot file missing", "Snapshot file not found")
	svc := newTestService(&fakeSource{err: sourceErr}, AnalyticsOptions{})

	_, err := svc.Dashboard(context.Background(), &DashboardRequest{DateRange: "last_7_days"})

	require.Error(t, err)
	assert.ErrorIs(t, err, sourceErr)
	assert.Contains(t, err.Error(), "loading snapshot")
}

func TestAnalyticsService_IntegrityFailsReportsButNotQuality(t *testing.T) {
	snap := datasettest.New().
		Customer(1, "Ada", "Boston").
		Amount(1, 7, datasettest.Date(2024, time.May, 1), 10).
		Snapshot()
	svc := newTestService(&fakeSource{snap: snap}, AnalyticsOptions{})

	_, err := svc.Segments(context.Background(), NoParams{})
	assert.True(t, errors.Is(err, errs.ErrIntegrity))

	quality, err := svc.Quality(context.Background(), NoParams{})
	require.NoError(t, err)
	assert.False(t, quality.Clean())
	assert.NotEmpty(t, quality.ReferentialIntegrity)
}

func TestAnalyticsService_UnknownCustomerCLV(t *testing.T) {
	svc := newTestService(&fakeSource{snap: janMarFixture().Snapshot()}, AnalyticsOptions{})
	id := int64(42)

	_, err := svc.CustomerLifetimeValue(context.Background(), &CLVRequest{CustomerID: &id})

	require.True(t, errors.Is(err, errs.ErrNotFound))
	assert.Equal(t, "CUSTOMER_NOT_FOUND", err.(*errs.Error).Code)
}

func TestAnalyticsService_OrdersFilterByStatus(t *testing.T) {
	snap := datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston").
		Product(10, "Novel", 1, 20, 5).
		Order(1, 1, datasettest.At(2024, time.June, 1, 9), model.OrderStatusDelivered, datasettest.Item(10, 1, 20)).
		Order(2, 1, datasettest.At(2024, time.June, 2, 9), model.OrderStatusCancelled, datasettest.Item(10, 2, 20)).
		Snapshot()
	svc := newTestService(&fakeSource{snap: snap}, AnalyticsOptions{})

	rows, err := svc.Orders(context.Background(), &OrdersRequest{
		StartDate: datasettest.Date(2024, time.June, 1),
		EndDate:   datasettest.Date(2024, time.June, 30),
		Status:    string(model.OrderStatusCancelled),
	})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].OrderID)
}

func TestAnalyticsService_DailyReportInConfiguredTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	svc := newTestService(&fakeSource{snap: janMarFixture().Snapshot()}, AnalyticsOptions{Location: tokyo})

	assert.Equal(t, tokyo, svc.Now().Location())
	rep, err := svc.DailyReport(context.Background(), time.Date(2024, time.March, 10, 0, 0, 0, 0, tokyo))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", rep.Date)
}

func TestAnalyticsService_ReportsAgreeOnOrderDayNearMidnight(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Stored in UTC on Feb 1, placed on the evening of Jan 31 in New York.
	snap := datasettest.New().
		Customer(1, "Ada", "Boston").
		Amount(1, 1, datasettest.At(2024, time.February, 1, 3), 100).
		Snapshot()
	svc := newTestService(&fakeSource{snap: snap}, AnalyticsOptions{Location: newYork})
	ctx := context.Background()

	daily, err := svc.DailyReport(ctx, time.Date(2024, time.January, 31, 0, 0, 0, 0, newYork))
	require.NoError(t, err)
	assert.Equal(t, 1, daily.Summary.TotalOrders)
	assert.InDelta(t, 100.0, daily.Summary.TotalSales, 1e-9)

	trends, err := svc.MonthlyTrends(ctx, &TrendsRequest{Year: 2024})
	require.NoError(t, err)
	require.Len(t, trends.Months, 1)
	assert.Equal(t, 1, trends.Months[0].Month)
	assert.InDelta(t, 100.0, trends.Months[0].Revenue, 1e-9)

	orders, err := svc.Orders(ctx, &OrdersRequest{
		StartDate: time.Date(2024, time.January, 31, 0, 0, 0, 0, newYork),
		EndDate:   time.Date(2024, time.January, 31, 0, 0, 0, 0, newYork),
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestNewAnalyticsService_Defaults(t *testing.T) {
	svc := NewAnalyticsService(&fakeSource{}, nil, AnalyticsOptions{}, nil)

	assert.Equal(t, time.UTC, svc.Location())
	assert.Equal(t, 30*time.Second, svc.loadTimeout)
	assert.WithinDuration(t, time.Now(), svc.Now(), time.Minute)
}

func TestSnapshotService_RequiresDatabase(t *testing.T) {
	log := zerolog.Nop()
	svc := NewSnapshotService(nil, &log)

	_, err := svc.Export(context.Background(), t.TempDir()+"/snap.json")

	require.Error(t, err)
	assert.Equal(t, "DATABASE_NOT_CONFIGURED", err.(*errs.Error).Code)
}
