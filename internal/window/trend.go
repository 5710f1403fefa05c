package window

import (
	"fmt"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/aggregate"
	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/model"
)

// GrowthPolicy decides which month a month's growth is measured against.
type GrowthPolicy string

const (
	// CalendarAdjacent compares a month with the calendar month right
	// before it. If that month had no orders the growth is 0.
	CalendarAdjacent GrowthPolicy = "calendar_adjacent"

	// PreviousPresent compares a month with the closest earlier month of
	// the same year that had orders, the SQL LAG() reading.
	PreviousPresent GrowthPolicy = "previous_present"
)

// ParseGrowthPolicy maps a flag value onto a GrowthPolicy. The empty
// string selects CalendarAdjacent.
func ParseGrowthPolicy(s string) (GrowthPolicy, error) {
	switch GrowthPolicy(s) {
	case "", CalendarAdjacent:
		return CalendarAdjacent, nil
	case PreviousPresent:
		return PreviousPresent, nil
	default:
		return "", fmt.Errorf("unknown growth policy %q", s)
	}
}

// MonthTrend is one row of the monthly trend table.
type MonthTrend struct {
	Month         int     `json:"month"`
	Revenue       float64 `json:"revenue"`
	OrderCount    int     `json:"order_count"`
	AvgOrderValue float64 `json:"avg_order_value"`
	GrowthRate    float64 `json:"growth_rate"`
}

// GrowthRate is (current - previous) / previous * 100, or 0 when previous
// is 0. Every growth figure in the reports goes through this guard.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// MonthlyTrend summarizes each month of year that had at least one order.
// Orders are assigned to months in loc. Months without orders are omitted,
// and rows come back in month order. An unknown policy is an error.
func MonthlyTrend(ds *dataset.Dataset, year int, policy GrowthPolicy, loc *time.Location) ([]MonthTrend, error) {
	switch policy {
	case "", CalendarAdjacent, PreviousPresent:
	default:
		return nil, fmt.Errorf("unknown growth policy %q", policy)
	}
	if loc == nil {
		loc = time.UTC
	}

	inYear := aggregate.Filter(ds.RevenueOrders(), func(o model.Order) bool {
		return o.OrderDate.In(loc).Year() == year
	})

	amount := func(o model.Order) float64 { return o.TotalAmount }
	byMonth := aggregate.GroupBy(inYear, func(o model.Order) time.Month { return o.OrderDate.In(loc).Month() },
		aggregate.SumOf("revenue", amount),
		aggregate.CountOf[model.Order]("orders"),
		aggregate.AvgOf("avg", amount),
	)

	trend := make([]MonthTrend, 0, byMonth.Len())
	for m := time.January; m <= time.December; m++ {
		g := byMonth.Get(m)
		if g == nil {
			continue
		}
		trend = append(trend, MonthTrend{
			Month:         int(m),
			Revenue:       g.Float("revenue"),
			OrderCount:    int(g.Float("orders")),
			AvgOrderValue: g.Float("avg"),
		})
	}

	for i := range trend {
		var previous float64
		switch policy {
		case PreviousPresent:
			if i > 0 {
				previous = trend[i-1].Revenue
			}
		case CalendarAdjacent, "":
			if i > 0 && trend[i-1].Month == trend[i].Month-1 {
				previous = trend[i-1].Revenue
			}
		}
		trend[i].GrowthRate = GrowthRate(trend[i].Revenue, previous)
	}

	return trend, nil
}
