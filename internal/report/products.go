package report

import (
	"sort"

	"github.com/deppfellow/storefront-analytics/internal/aggregate"
	"github.com/deppfellow/storefront-analytics/internal/classify"
	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/model"
)

// PerformanceCategory buckets a product by revenue.
type PerformanceCategory string

const (
	NoSales         PerformanceCategory = "No Sales"
	LowPerformer    PerformanceCategory = "Low Performer"
	MediumPerformer PerformanceCategory = "Medium Performer"
	HighPerformer   PerformanceCategory = "High Performer"
)

const (
	lowPerformerBelow = 1000.0
	midPerformerBelow = 5000.0
)

// PerformanceCategoryFor buckets a revenue figure.
func PerformanceCategoryFor(revenue float64) PerformanceCategory {
	switch {
	case revenue == 0:
		return NoSales
	case revenue < lowPerformerBelow:
		return LowPerformer
	case revenue < midPerformerBelow:
		return MediumPerformer
	default:
		return HighPerformer
	}
}

// ProductPerformance is one row of the product performance table.
type ProductPerformance struct {
	ProductID           int64               `json:"product_id"`
	ProductName         string              `json:"product_name"`
	Category            string              `json:"category"`
	TotalRevenue        float64             `json:"total_revenue"`
	UnitsSold           int                 `json:"units_sold"`
	AvgRating           *float64            `json:"avg_rating"`
	RevenueRank         int                 `json:"revenue_rank"`
	PerformanceCategory PerformanceCategory `json:"performance_category"`
}

// BuildProductPerformance lists every product, sold or not, by revenue.
//
// Products without sales appear with revenue and units at 0. RevenueRank
// follows SQL RANK(): equal revenues share a rank and the next distinct
// revenue skips ahead. AvgRating is the product's own rating, nil when the
// product has none.
func BuildProductPerformance(ds *dataset.Dataset) []ProductPerformance {
	sales := aggregate.OuterGroupBy(
		ds.Products(), func(p model.Product) int64 { return p.ID },
		ds.RevenueItems(), func(it model.OrderItem) int64 { return it.ProductID },
		aggregate.SumOf("revenue", itemRevenue),
		aggregate.SumOf("units", func(it model.OrderItem) float64 { return float64(it.Quantity) }),
	)

	out := make([]ProductPerformance, 0, sales.Len())
	for _, p := range ds.Products() {
		g := sales.Get(p.ID)
		out = append(out, ProductPerformance{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Category:     ds.CategoryName(p.ID),
			TotalRevenue: g.Float("revenue"),
			UnitsSold:    int(g.Float("units")),
			AvgRating:    p.AverageRating,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].ProductID < out[j].ProductID
	})

	for i := range out {
		if i > 0 && out[i].TotalRevenue == out[i-1].TotalRevenue {
			out[i].RevenueRank = out[i-1].RevenueRank
		} else {
			out[i].RevenueRank = i + 1
		}
		out[i].PerformanceCategory = PerformanceCategoryFor(out[i].TotalRevenue)
		out[i].TotalRevenue = round2(out[i].TotalRevenue)
	}
	return out
}

// ABCReport holds the ABC entries split by class.
type ABCReport map[classify.Class][]classify.ABCEntry

// BuildABCReport runs classify.ABC and groups the rounded entries by class.
func BuildABCReport(ds *dataset.Dataset) ABCReport {
	entries := classify.ABC(ds)
	for i := range entries {
		entries[i].TotalRevenue = round2(entries[i].TotalRevenue)
		entries[i].CumulativePercent = round2(entries[i].CumulativePercent)
	}
	return ABCReport(classify.GroupByClass(entries))
}
