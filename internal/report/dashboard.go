package report

import (
	"fmt"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/window"
)

// DateRange selects the trailing period of a dashboard.
type DateRange string

const (
	Last7Days   DateRange = "last_7_days"
	Last30Days  DateRange = "last_30_days"
	Last90Days  DateRange = "last_90_days"
	Last365Days DateRange = "last_365_days"
)

// Days is the length of r in days. ok is false for an unknown range.
func (r DateRange) Days() (days int, ok bool) {
	switch r {
	case Last7Days:
		return 7, true
	case Last30Days:
		return 30, true
	case Last90Days:
		return 90, true
	case Last365Days:
		return 365, true
	default:
		return 0, false
	}
}

const (
	dashboardTopProducts   = 5
	dashboardTopCategories = 5
	dashboardTopCities     = 10
)

// DashboardMetrics are the headline figures of the current period.
type DashboardMetrics struct {
	TotalSales     float64 `json:"total_sales"`
	TotalOrders    int     `json:"total_orders"`
	TotalCustomers int     `json:"total_customers"`
	AvgOrderValue  float64 `json:"avg_order_value"`
}

// GrowthRates compare the current period with the one before it.
type GrowthRates struct {
	SalesGrowth     float64 `json:"sales_growth"`
	OrdersGrowth    float64 `json:"orders_growth"`
	CustomersGrowth float64 `json:"customers_growth"`
}

// Dashboard is the sales dashboard for a trailing period.
type Dashboard struct {
	DateRange              DateRange         `json:"date_range"`
	Metrics                DashboardMetrics  `json:"metrics"`
	GrowthRates            GrowthRates       `json:"growth_rates"`
	TopProducts            []ProductRevenue  `json:"top_products"`
	TopCategories          []CategoryRevenue `json:"top_categories"`
	GeographicDistribution []CityRevenue     `json:"geographic_distribution"`
}

// BuildDashboard summarizes the last d days against the d days before.
//
// The current period is [today - d, open end) and the previous one is
// [today - 2d, today - d). Growth uses the same zero guard as the monthly
// trend: a previous figure of 0 yields 0% growth.
func BuildDashboard(ds *dataset.Dataset, dateRange DateRange, now time.Time) (*Dashboard, error) {
	days, ok := dateRange.Days()
	if !ok {
		return nil, errs.NewInvalidParameterError(
			fmt.Sprintf("unknown date range %q", dateRange),
			[]errs.FieldError{{Field: "date_range", Error: "must be one of last_7_days last_30_days last_90_days last_365_days"}},
		)
	}

	today := window.Today(now)
	current := window.Since(today.AddDate(0, 0, -days))
	previous := window.Between(today.AddDate(0, 0, -2*days), today.AddDate(0, 0, -days))

	currentOrders := ordersIn(ds, current)
	cur := totalsOf(currentOrders)
	prev := totalsOf(ordersIn(ds, previous))

	var avg float64
	if cur.orders > 0 {
		avg = cur.sales / float64(cur.orders)
	}

	currentItems := itemsIn(ds, current)
	return &Dashboard{
		DateRange: dateRange,
		Metrics: DashboardMetrics{
			TotalSales:     round2(cur.sales),
			TotalOrders:    cur.orders,
			TotalCustomers: cur.customers,
			AvgOrderValue:  round2(avg),
		},
		GrowthRates: GrowthRates{
			SalesGrowth:     round2(window.GrowthRate(cur.sales, prev.sales)),
			OrdersGrowth:    round2(window.GrowthRate(float64(cur.orders), float64(prev.orders))),
			CustomersGrowth: round2(window.GrowthRate(float64(cur.customers), float64(prev.customers))),
		},
		TopProducts:            topProducts(ds, currentItems, dashboardTopProducts),
		TopCategories:          topCategories(ds, currentItems, dashboardTopCategories),
		GeographicDistribution: topCities(ds, currentOrders, dashboardTopCities),
	}, nil
}
