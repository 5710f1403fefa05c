package report

import (
	"sort"

	"github.com/deppfellow/storefront-analytics/internal/aggregate"
	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/deppfellow/storefront-analytics/internal/window"
	"github.com/shopspring/decimal"
)

// DateLayout is how calendar days are rendered in reports.
const DateLayout = "2006-01-02"

// round2 rounds half away from zero to two decimals.
func round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// ProductRevenue is a product ranked by item revenue.
type ProductRevenue struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Revenue     float64 `json:"revenue"`
}

// CategoryRevenue is a category ranked by item revenue.
type CategoryRevenue struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Revenue      float64 `json:"revenue"`
}

// CityRevenue is a city ranked by order revenue.
type CityRevenue struct {
	City    string  `json:"city"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// periodTotals is the headline of a set of orders.
type periodTotals struct {
	sales     float64
	orders    int
	customers int
}

func totalsOf(orders []model.Order) periodTotals {
	t := periodTotals{orders: len(orders)}
	seen := make(map[int64]struct{})
	for _, o := range orders {
		t.sales += o.TotalAmount
		seen[o.CustomerID] = struct{}{}
	}
	t.customers = len(seen)
	return t
}

func ordersIn(ds *dataset.Dataset, r window.Range) []model.Order {
	return aggregate.Filter(ds.RevenueOrders(), func(o model.Order) bool {
		return r.Contains(o.OrderDate)
	})
}

func itemsIn(ds *dataset.Dataset, r window.Range) []model.OrderItem {
	return aggregate.Filter(ds.RevenueItems(), func(it model.OrderItem) bool {
		o, _ := ds.Order(it.OrderID)
		return r.Contains(o.OrderDate)
	})
}

func itemRevenue(it model.OrderItem) float64 { return it.TotalPrice }

// topProducts ranks products by item revenue, at most limit of them.
func topProducts(ds *dataset.Dataset, items []model.OrderItem, limit int) []ProductRevenue {
	byProduct := aggregate.GroupBy(items, func(it model.OrderItem) int64 { return it.ProductID },
		aggregate.SumOf("revenue", itemRevenue),
	)

	out := make([]ProductRevenue, 0, byProduct.Len())
	for _, id := range byProduct.Keys {
		p, _ := ds.Product(id)
		out = append(out, ProductRevenue{
			ProductID:   id,
			ProductName: p.Name,
			Revenue:     byProduct.Get(id).Float("revenue"),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].ProductID < out[j].ProductID
	})

	out = truncate(out, limit)
	for i := range out {
		out[i].Revenue = round2(out[i].Revenue)
	}
	return out
}

// topCategories ranks categories by item revenue, at most limit of them.
func topCategories(ds *dataset.Dataset, items []model.OrderItem, limit int) []CategoryRevenue {
	categoryOf := func(it model.OrderItem) int64 {
		p, _ := ds.Product(it.ProductID)
		return p.CategoryID
	}
	byCategory := aggregate.GroupBy(items, categoryOf, aggregate.SumOf("revenue", itemRevenue))

	out := make([]CategoryRevenue, 0, byCategory.Len())
	for _, id := range byCategory.Keys {
		c, _ := ds.Category(id)
		out = append(out, CategoryRevenue{
			CategoryID:   id,
			CategoryName: c.Name,
			Revenue:      byCategory.Get(id).Float("revenue"),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].CategoryID < out[j].CategoryID
	})

	out = truncate(out, limit)
	for i := range out {
		out[i].Revenue = round2(out[i].Revenue)
	}
	return out
}

// topCities ranks the cities of the ordering customers by order revenue.
// Customers without a city are left out. limit <= 0 keeps every city.
func topCities(ds *dataset.Dataset, orders []model.Order, limit int) []CityRevenue {
	cityOf := func(o model.Order) string {
		c, _ := ds.Customer(o.CustomerID)
		return c.City
	}
	withCity := aggregate.Filter(orders, func(o model.Order) bool { return cityOf(o) != "" })
	byCity := aggregate.GroupBy(withCity, cityOf,
		aggregate.SumOf("revenue", func(o model.Order) float64 { return o.TotalAmount }),
		aggregate.CountOf[model.Order]("orders"),
	)

	out := make([]CityRevenue, 0, byCity.Len())
	for _, city := range byCity.Keys {
		g := byCity.Get(city)
		out = append(out, CityRevenue{
			City:    city,
			Revenue: g.Float("revenue"),
			Orders:  int(g.Float("orders")),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].City < out[j].City
	})

	out = truncate(out, limit)
	for i := range out {
		out[i].Revenue = round2(out[i].Revenue)
	}
	return out
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
