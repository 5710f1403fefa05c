package window_test

import (
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset/datasettest"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/deppfellow/storefront-analytics/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func janMarFixture(t *testing.T) *datasettest.Builder {
	t.Helper()
	return datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston").
		Amount(1, 1, datasettest.Date(2024, time.January, 5), 60).
		Amount(2, 1, datasettest.Date(2024, time.January, 20), 40).
		Amount(3, 1, datasettest.Date(2024, time.March, 3), 150).
		Order(4, 1, datasettest.Date(2024, time.February, 3), model.OrderStatusCancelled).
		Amount(5, 1, datasettest.Date(2023, time.December, 31), 999)
}

func TestMonthlyTrend_GrowthPolicies(t *testing.T) {
	ds := janMarFixture(t).Dataset(t)

	tests := []struct {
		policy      window.GrowthPolicy
		marchGrowth float64
	}{
		{window.CalendarAdjacent, 0},
		{window.PreviousPresent, 50},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			trend, err := window.MonthlyTrend(ds, 2024, tt.policy, time.UTC)
			require.NoError(t, err)

			require.Len(t, trend, 2, "february only has a cancelled order and is omitted")

			jan, mar := trend[0], trend[1]
			assert.Equal(t, 1, jan.Month)
			assert.InDelta(t, 100.0, jan.Revenue, 1e-9)
			assert.Equal(t, 2, jan.OrderCount)
			assert.InDelta(t, 50.0, jan.AvgOrderValue, 1e-9)
			assert.Equal(t, 0.0, jan.GrowthRate)

			assert.Equal(t, 3, mar.Month)
			assert.InDelta(t, 150.0, mar.Revenue, 1e-9)
			assert.InDelta(t, tt.marchGrowth, mar.GrowthRate, 1e-9)
		})
	}
}

func TestMonthlyTrend_AdjacentMonthsAgree(t *testing.T) {
	ds := datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston").
		Amount(1, 1, datasettest.Date(2024, time.January, 5), 100).
		Amount(2, 1, datasettest.Date(2024, time.February, 5), 120).
		Dataset(t)

	for _, p := range []window.GrowthPolicy{window.CalendarAdjacent, window.PreviousPresent} {
		trend, err := window.MonthlyTrend(ds, 2024, p, time.UTC)
		require.NoError(t, err)
		require.Len(t, trend, 2)
		assert.InDelta(t, 20.0, trend[1].GrowthRate, 1e-9)
	}
}

func TestMonthlyTrend_EmptyYear(t *testing.T) {
	ds := janMarFixture(t).Dataset(t)

	trend, err := window.MonthlyTrend(ds, 2019, window.CalendarAdjacent, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, trend)
}

func TestMonthlyTrend_MonthsTakenInLocation(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:00 UTC on Feb 1 is still Jan 31 in New York.
	ds := datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston").
		Amount(1, 1, datasettest.At(2024, time.February, 1, 3), 100).
		Dataset(t)

	trend, err := window.MonthlyTrend(ds, 2024, window.CalendarAdjacent, newYork)
	require.NoError(t, err)
	require.Len(t, trend, 1)
	assert.Equal(t, 1, trend[0].Month)

	trend, err = window.MonthlyTrend(ds, 2024, window.CalendarAdjacent, time.UTC)
	require.NoError(t, err)
	require.Len(t, trend, 1)
	assert.Equal(t, 2, trend[0].Month)
}

func TestMonthlyTrend_YearBoundaryInLocation(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ds := datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston").
		Amount(1, 1, datasettest.At(2024, time.January, 1, 2), 100).
		Dataset(t)

	trend, err := window.MonthlyTrend(ds, 2024, window.CalendarAdjacent, newYork)
	require.NoError(t, err)
	assert.Empty(t, trend)

	trend, err = window.MonthlyTrend(ds, 2023, window.CalendarAdjacent, newYork)
	require.NoError(t, err)
	require.Len(t, trend, 1)
	assert.Equal(t, 12, trend[0].Month)
}

func TestMonthlyTrend_UnknownPolicy(t *testing.T) {
	ds := janMarFixture(t).Dataset(t)

	_, err := window.MonthlyTrend(ds, 2024, window.GrowthPolicy("lag"), time.UTC)
	assert.ErrorContains(t, err, `unknown growth policy "lag"`)
}

func TestMonthlyTrend_EmptyPolicyIsCalendarAdjacent(t *testing.T) {
	ds := janMarFixture(t).Dataset(t)

	trend, err := window.MonthlyTrend(ds, 2024, "", time.UTC)
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Equal(t, 0.0, trend[1].GrowthRate)
}

func TestParseGrowthPolicy(t *testing.T) {
	p, err := window.ParseGrowthPolicy("")
	require.NoError(t, err)
	assert.Equal(t, window.CalendarAdjacent, p)

	p, err = window.ParseGrowthPolicy("previous_present")
	require.NoError(t, err)
	assert.Equal(t, window.PreviousPresent, p)

	_, err = window.ParseGrowthPolicy("lag")
	assert.Error(t, err)
}

func TestGrowthRate_ZeroGuard(t *testing.T) {
	assert.Equal(t, 0.0, window.GrowthRate(500, 0))
	assert.InDelta(t, -25.0, window.GrowthRate(75, 100), 1e-9)
}
