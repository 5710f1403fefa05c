package report_test

import (
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/classify"
	"github.com/deppfellow/storefront-analytics/internal/dataset/datasettest"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/deppfellow/storefront-analytics/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductPerformanceAndABC_TwoProductScenario(t *testing.T) {
	ds := datasettest.New().
		Category(1, "Gadgets").
		Customer(1, "Ada", "Boston").
		Product(1, "P1", 1, 100, 10).Rated(4.5).
		Product(2, "P2", 1, 50, 10).
		Order(1, 1, d(time.May, 1), model.OrderStatusDelivered, datasettest.Item(1, 2, 100)).
		Dataset(t)

	perf := report.BuildProductPerformance(ds)
	require.Len(t, perf, 2)

	p1, p2 := perf[0], perf[1]
	assert.Equal(t, "P1", p1.ProductName)
	assert.Equal(t, 200.0, p1.TotalRevenue)
	assert.Equal(t, 2, p1.UnitsSold)
	require.NotNil(t, p1.AvgRating)
	assert.Equal(t, 4.5, *p1.AvgRating)
	assert.Equal(t, 1, p1.RevenueRank)
	assert.Equal(t, report.LowPerformer, p1.PerformanceCategory)

	assert.Equal(t, "P2", p2.ProductName)
	assert.Zero(t, p2.TotalRevenue)
	assert.Zero(t, p2.UnitsSold)
	assert.Nil(t, p2.AvgRating, "missing rating stays absent")
	assert.Equal(t, 2, p2.RevenueRank)
	assert.Equal(t, report.NoSales, p2.PerformanceCategory)

	abc := report.BuildABCReport(ds)
	require.Len(t, abc[classify.ClassA], 1)
	assert.Equal(t, "P1", abc[classify.ClassA][0].ProductName)
	assert.Equal(t, 100.0, abc[classify.ClassA][0].CumulativePercent)
	assert.Empty(t, abc[classify.ClassB])
	assert.Empty(t, abc[classify.ClassC])
}

func TestBuildProductPerformance_RankSkipsAfterTies(t *testing.T) {
	ds := datasettest.New().
		Category(1, "Gadgets").
		Customer(1, "Ada", "Boston").
		Product(1, "A", 1, 100, 1).
		Product(2, "B", 1, 100, 1).
		Product(3, "C", 1, 6000, 1).
		Product(4, "D", 1, 2000, 1).
		Order(1, 1, d(time.May, 1), model.OrderStatusDelivered,
			datasettest.Item(1, 1, 100),
			datasettest.Item(2, 1, 100),
			datasettest.Item(3, 1, 6000),
			datasettest.Item(4, 1, 2000),
		).
		Dataset(t)

	perf := report.BuildProductPerformance(ds)

	ranks := map[string]int{}
	cats := map[string]report.PerformanceCategory{}
	for _, p := range perf {
		ranks[p.ProductName] = p.RevenueRank
		cats[p.ProductName] = p.PerformanceCategory
	}
	assert.Equal(t, map[string]int{"C": 1, "D": 2, "A": 3, "B": 3}, ranks)
	assert.Equal(t, report.HighPerformer, cats["C"])
	assert.Equal(t, report.MediumPerformer, cats["D"])
	assert.Equal(t, report.LowPerformer, cats["A"])
}

func TestPerformanceCategoryFor(t *testing.T) {
	assert.Equal(t, report.NoSales, report.PerformanceCategoryFor(0))
	assert.Equal(t, report.LowPerformer, report.PerformanceCategoryFor(999.99))
	assert.Equal(t, report.MediumPerformer, report.PerformanceCategoryFor(1000))
	assert.Equal(t, report.HighPerformer, report.PerformanceCategoryFor(5000))
}
