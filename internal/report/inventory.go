package report

import (
	"math"
	"sort"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/aggregate"
	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/deppfellow/storefront-analytics/internal/window"
)

const (
	// VelocityWindowDays is the sales history reorder velocity is read from.
	VelocityWindowDays = 30

	// ReorderHorizonDays flags products that run out within this many days.
	ReorderHorizonDays = 7

	// SupplyDays is how many days of sales a recommended reorder covers.
	SupplyDays = 30

	// DefaultSlowMoverDays is the idle period used when none is given.
	DefaultSlowMoverDays = 90
)

// ReorderRecommendation is a product about to run out of stock.
type ReorderRecommendation struct {
	ProductID           int64   `json:"product_id"`
	ProductName         string  `json:"product_name"`
	CurrentStock        int     `json:"current_stock"`
	AvgDailySales       float64 `json:"avg_daily_sales"`
	DaysUntilStockout   float64 `json:"days_until_stockout"`
	RecommendedOrderQty int     `json:"recommended_order_qty"`
}

// BuildReorderRecommendations lists products whose stock covers at most a
// week of their recent sales.
//
// Velocity is units sold over the last 30 days divided by 30. Products
// that did not sell in that window are never recommended. The
// recommendation covers 30 days of sales, rounded up to whole units.
// Rows are sorted by days until stockout, soonest first.
func BuildReorderRecommendations(ds *dataset.Dataset, now time.Time) []ReorderRecommendation {
	since := window.Since(window.Today(now).AddDate(0, 0, -VelocityWindowDays))
	units := aggregate.GroupBy(itemsIn(ds, since), func(it model.OrderItem) int64 { return it.ProductID },
		aggregate.SumOf("units", func(it model.OrderItem) float64 { return float64(it.Quantity) }),
	)

	out := []ReorderRecommendation{}
	for _, p := range ds.Products() {
		g := units.Get(p.ID)
		if g == nil {
			continue
		}
		sold := g.Float("units")
		velocity := sold / VelocityWindowDays
		if velocity <= 0 {
			continue
		}
		days := float64(p.StockQuantity) / velocity
		if days > ReorderHorizonDays {
			continue
		}
		out = append(out, ReorderRecommendation{
			ProductID:           p.ID,
			ProductName:         p.Name,
			CurrentStock:        p.StockQuantity,
			AvgDailySales:       velocity,
			DaysUntilStockout:   days,
			RecommendedOrderQty: int(math.Ceil(sold * SupplyDays / VelocityWindowDays)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysUntilStockout != out[j].DaysUntilStockout {
			return out[i].DaysUntilStockout < out[j].DaysUntilStockout
		}
		return out[i].ProductID < out[j].ProductID
	})
	for i := range out {
		out[i].AvgDailySales = round2(out[i].AvgDailySales)
		out[i].DaysUntilStockout = round2(out[i].DaysUntilStockout)
	}
	return out
}

// SlowMover is a stocked product that has not sold recently.
type SlowMover struct {
	ProductID      int64   `json:"product_id"`
	ProductName    string  `json:"product_name"`
	Category       string  `json:"category"`
	StockQuantity  int     `json:"stock_quantity"`
	UnitPrice      float64 `json:"unit_price"`
	InventoryValue float64 `json:"inventory_value"`
	LastSaleDate   *string `json:"last_sale_date"`
	DaysSinceSale  *int    `json:"days_since_sale"`
}

// BuildSlowMovers lists products in stock whose last sale is older than
// days, or that never sold, by tied-up inventory value descending.
func BuildSlowMovers(ds *dataset.Dataset, days int, now time.Time) ([]SlowMover, error) {
	if days < 0 {
		return nil, errs.NewInvalidParameterError("days must not be negative", []errs.FieldError{
			{Field: "days", Error: "must be at least 0"},
		})
	}
	today := window.Today(now)
	cutoff := today.AddDate(0, 0, -days)

	type row struct {
		SlowMover
		value float64
	}
	rows := []row{}
	for _, p := range ds.Products() {
		if p.StockQuantity <= 0 {
			continue
		}
		last, sold := lastSale(ds, p.ID)
		if sold && !last.Before(cutoff) {
			continue
		}

		value := float64(p.StockQuantity) * p.Price
		m := SlowMover{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Category:       ds.CategoryName(p.ID),
			StockQuantity:  p.StockQuantity,
			UnitPrice:      round2(p.Price),
			InventoryValue: round2(value),
		}
		if sold {
			d := last.Format(DateLayout)
			idle := window.WholeDays(window.Day(last), today)
			m.LastSaleDate = &d
			m.DaysSinceSale = &idle
		}
		rows = append(rows, row{SlowMover: m, value: value})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].value != rows[j].value {
			return rows[i].value > rows[j].value
		}
		return rows[i].ProductID < rows[j].ProductID
	})

	out := make([]SlowMover, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.SlowMover)
	}
	return out, nil
}

// lastSale is the date of the newest revenue-bearing order containing the
// product.
func lastSale(ds *dataset.Dataset, productID int64) (time.Time, bool) {
	var last time.Time
	found := false
	for _, it := range ds.ItemsOfProduct(productID) {
		o, ok := ds.Order(it.OrderID)
		if !ok || !o.IsRevenueBearing() {
			continue
		}
		if !found || o.OrderDate.After(last) {
			last = o.OrderDate
			found = true
		}
	}
	return last, found
}
