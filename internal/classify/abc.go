package classify

import (
	"sort"

	"github.com/deppfellow/storefront-analytics/internal/aggregate"
	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/model"
)

// Class is an ABC inventory class.
type Class string

const (
	ClassA Class = "A"
	ClassB Class = "B"
	ClassC Class = "C"
)

// Classes lists the classes in rank order.
var Classes = []Class{ClassA, ClassB, ClassC}

// Cumulative-share thresholds, in percent.
const (
	ClassAThreshold = 80.0
	ClassBThreshold = 95.0
)

// ABCEntry is one product of an ABC analysis.
type ABCEntry struct {
	ProductID         int64   `json:"product_id"`
	ProductName       string  `json:"product_name"`
	Category          string  `json:"category"`
	TotalRevenue      float64 `json:"total_revenue"`
	CumulativePercent float64 `json:"cumulative_percent"`
	Class             Class   `json:"abc_class"`
}

// ClassFor maps a cumulative share onto a class.
func ClassFor(cumulativePercent float64) Class {
	switch {
	case cumulativePercent <= ClassAThreshold:
		return ClassA
	case cumulativePercent <= ClassBThreshold:
		return ClassB
	default:
		return ClassC
	}
}

// ABC ranks products with revenue by descending revenue and classifies
// them on the running share of total revenue.
//
// Products without revenue are left out. Equal revenues keep product id
// order, and each product adds its own revenue to the running total even
// when tied with the previous one. The top-ranked product is always class
// A: it is the single largest contributor even when that alone exceeds
// 80% of revenue.
func ABC(ds *dataset.Dataset) []ABCEntry {
	revenue := aggregate.OuterGroupBy(
		ds.Products(), func(p model.Product) int64 { return p.ID },
		ds.RevenueItems(), func(it model.OrderItem) int64 { return it.ProductID },
		aggregate.SumOf("revenue", func(it model.OrderItem) float64 { return it.TotalPrice }),
	)

	entries := make([]ABCEntry, 0, revenue.Len())
	var total float64
	for _, p := range ds.Products() {
		rev := revenue.Get(p.ID).Float("revenue")
		if rev <= 0 {
			continue
		}
		total += rev
		entries = append(entries, ABCEntry{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Category:     ds.CategoryName(p.ID),
			TotalRevenue: rev,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalRevenue != entries[j].TotalRevenue {
			return entries[i].TotalRevenue > entries[j].TotalRevenue
		}
		return entries[i].ProductID < entries[j].ProductID
	})

	var running float64
	for i := range entries {
		running += entries[i].TotalRevenue
		entries[i].CumulativePercent = running * 100 / total
		entries[i].Class = ClassFor(entries[i].CumulativePercent)
	}
	if len(entries) > 0 {
		entries[0].Class = ClassA
	}

	return entries
}

// GroupByClass splits entries into their classes, keeping order. Every
// class key is present.
func GroupByClass(entries []ABCEntry) map[Class][]ABCEntry {
	out := make(map[Class][]ABCEntry, len(Classes))
	for _, c := range Classes {
		out[c] = []ABCEntry{}
	}
	for _, e := range entries {
		out[e.Class] = append(out[e.Class], e)
	}
	return out
}
