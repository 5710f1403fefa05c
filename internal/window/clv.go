package window

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/aggregate"
	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/model"
)

const (
	// CLVHorizonYears is how many years of future purchases CLV projects.
	CLVHorizonYears = 2.0

	// MinYearsActive floors the active span so one-off buyers do not
	// divide by zero.
	MinYearsActive = 0.1

	// DefaultCLVLimit caps the CLV table when no limit is given.
	DefaultCLVLimit = 100
)

// CLV is one row of the customer lifetime value table.
type CLV struct {
	CustomerID            int64      `json:"customer_id"`
	CustomerName          string     `json:"customer_name"`
	TotalSpent            float64    `json:"total_spent"`
	TotalOrders           int        `json:"total_orders"`
	AvgOrderValue         float64    `json:"avg_order_value"`
	OrderFrequencyPerYear float64    `json:"order_frequency_per_year"`
	PredictedCLV          float64    `json:"predicted_clv"`
	LastOrderDate         *time.Time `json:"last_order_date"`
}

// CLVQuery selects the rows of the CLV table.
type CLVQuery struct {
	// CustomerID restricts the table to one customer when set.
	CustomerID *int64

	// Limit caps the number of rows. 0 means DefaultCLVLimit.
	Limit int
}

// CustomerLifetimeValue projects the value of every customer.
//
//	years_active  = max(whole days from first to last order / 365, 0.1)
//	frequency     = total_orders / years_active
//	predicted_clv = avg_order_value * frequency * 2
//
// Customers without orders appear with every figure at 0. Rows are sorted
// by predicted_clv descending, ties by customer id. Asking for a customer
// the Dataset does not hold is a not-found error.
func CustomerLifetimeValue(ds *dataset.Dataset, q CLVQuery) ([]CLV, error) {
	if q.Limit < 0 {
		return nil, errs.NewInvalidParameterError("limit must not be negative", []errs.FieldError{
			{Field: "limit", Error: "must be at least 0"},
		})
	}
	limit := q.Limit
	if limit == 0 {
		limit = DefaultCLVLimit
	}

	customers := ds.Customers()
	if q.CustomerID != nil {
		c, ok := ds.Customer(*q.CustomerID)
		if !ok {
			code := "CUSTOMER_NOT_FOUND"
			return nil, errs.NewNotFoundError(fmt.Sprintf("customer %d not found", *q.CustomerID), &code)
		}
		customers = []model.Customer{c}
	}

	amount := func(o model.Order) float64 { return o.TotalAmount }
	stats := aggregate.OuterGroupBy(
		customers, func(c model.Customer) int64 { return c.ID },
		ds.RevenueOrders(), func(o model.Order) int64 { return o.CustomerID },
		aggregate.SumOf("spent", amount),
		aggregate.CountOf[model.Order]("orders"),
		aggregate.AvgOf("avg", amount),
	)

	out := make([]CLV, 0, len(customers))
	for _, c := range customers {
		g := stats.Get(c.ID)
		row := CLV{
			CustomerID:   c.ID,
			CustomerName: c.Name,
			TotalSpent:   g.Float("spent"),
			TotalOrders:  int(g.Float("orders")),
		}

		if row.TotalOrders > 0 {
			first, last := orderSpan(ds.OrdersOf(c.ID))

			years := math.Max(float64(WholeDays(first, last))/365.0, MinYearsActive)
			row.AvgOrderValue = g.Float("avg")
			row.OrderFrequencyPerYear = float64(row.TotalOrders) / years
			row.PredictedCLV = row.AvgOrderValue * row.OrderFrequencyPerYear * CLVHorizonYears
			row.LastOrderDate = &last
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PredictedCLV != out[j].PredictedCLV {
			return out[i].PredictedCLV > out[j].PredictedCLV
		}
		return out[i].CustomerID < out[j].CustomerID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// orderSpan returns the first and last revenue-bearing order dates.
func orderSpan(orders []model.Order) (first, last time.Time) {
	seen := false
	for _, o := range orders {
		if !o.IsRevenueBearing() {
			continue
		}
		if !seen || o.OrderDate.Before(first) {
			first = o.OrderDate
		}
		if !seen || o.OrderDate.After(last) {
			last = o.OrderDate
		}
		seen = true
	}
	return first, last
}
