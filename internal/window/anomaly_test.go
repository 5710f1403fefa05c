package window_test

import (
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset/datasettest"
	"github.com/deppfellow/storefront-analytics/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnomalies_FlagsSpike(t *testing.T) {
	b := datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston")
	for i := 0; i < 10; i++ {
		b.Amount(int64(i+1), 1, datasettest.Date(2024, time.June, 1+i), 100)
	}
	b.Amount(50, 1, datasettest.Date(2024, time.May, 20), 1000)
	// Outside the 90-day window.
	b.Amount(60, 1, datasettest.Date(2024, time.January, 2), 90000)

	got := window.Anomalies(b.Dataset(t), now)

	require.Len(t, got, 1)
	a := got[0]
	assert.Equal(t, datasettest.Date(2024, time.May, 20), a.Date)
	assert.Equal(t, window.Spike, a.Type)
	assert.InDelta(t, 1000.0, a.DailyRevenue, 1e-9)
	assert.InDelta(t, 2000.0/11.0, a.MeanRevenue, 1e-9)
	assert.Greater(t, a.ZScore, window.AnomalyThreshold)
}

func TestAnomalies_SumsOrdersOfTheSameDay(t *testing.T) {
	b := datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston")
	for i := 0; i < 10; i++ {
		b.Amount(int64(i+1), 1, datasettest.At(2024, time.June, 1+i, 9), 100)
	}
	for i := 0; i < 10; i++ {
		b.Amount(int64(100+i), 1, datasettest.At(2024, time.May, 20, i), 100)
	}

	got := window.Anomalies(b.Dataset(t), now)

	require.Len(t, got, 1)
	assert.InDelta(t, 1000.0, got[0].DailyRevenue, 1e-9)
}

func TestAnomalies_ZeroVarianceFlagsNothing(t *testing.T) {
	b := datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston")
	for i := 0; i < 5; i++ {
		b.Amount(int64(i+1), 1, datasettest.Date(2024, time.June, 1+i), 100)
	}

	assert.Empty(t, window.Anomalies(b.Dataset(t), now))
}

func TestAnomalies_SingleDayFlagsNothing(t *testing.T) {
	ds := datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston").
		Amount(1, 1, datasettest.Date(2024, time.June, 1), 100).
		Dataset(t)

	got := window.Anomalies(ds, now)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAnomalies_DaysTakenInLocationOfNow(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	b := datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston")
	for i := 0; i < 10; i++ {
		b.Amount(int64(i+1), 1, datasettest.At(2024, time.June, 1+i, 16), 100)
	}
	// 02:00 UTC on May 21 is the evening of May 20 in New York.
	b.Amount(50, 1, datasettest.At(2024, time.May, 21, 2), 1000)

	got := window.Anomalies(b.Dataset(t), now.In(newYork))

	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, time.May, 20, 0, 0, 0, 0, newYork), got[0].Date)
	assert.Equal(t, window.Spike, got[0].Type)
}
