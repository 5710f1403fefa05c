package report

import (
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/window"
)

const dailyTopProducts = 5

// DailySummary is the headline of a daily sales report.
type DailySummary struct {
	TotalOrders        int     `json:"total_orders"`
	TotalCustomers     int     `json:"total_customers"`
	TotalSales         float64 `json:"total_sales"`
	NewCustomers       int     `json:"new_customers"`
	ReturningCustomers int     `json:"returning_customers"`
}

// DailyReport covers every order placed on one calendar day.
type DailyReport struct {
	Date                string           `json:"date"`
	Summary             DailySummary     `json:"summary"`
	TopProducts         []ProductRevenue `json:"top_products"`
	GeographicBreakdown []CityRevenue    `json:"geographic_breakdown"`
}

// BuildDailyReport summarizes the orders placed on date's calendar day.
//
// New and returning are counted per distinct customer: a customer is new
// when their first order ever falls on that day, returning otherwise.
func BuildDailyReport(ds *dataset.Dataset, date time.Time) *DailyReport {
	day := window.Day(date)
	r := window.DayRange(day, day)

	orders := ordersIn(ds, r)
	totals := totalsOf(orders)

	summary := DailySummary{
		TotalOrders:    totals.orders,
		TotalCustomers: totals.customers,
		TotalSales:     round2(totals.sales),
	}

	counted := make(map[int64]struct{}, totals.customers)
	for _, o := range orders {
		if _, ok := counted[o.CustomerID]; ok {
			continue
		}
		counted[o.CustomerID] = struct{}{}

		if firstOrderIn(ds, o.CustomerID, r) {
			summary.NewCustomers++
		} else {
			summary.ReturningCustomers++
		}
	}

	return &DailyReport{
		Date:                day.Format(DateLayout),
		Summary:             summary,
		TopProducts:         topProducts(ds, itemsIn(ds, r), dailyTopProducts),
		GeographicBreakdown: topCities(ds, orders, 0),
	}
}

// firstOrderIn reports whether no revenue-bearing order of the customer
// predates r.
func firstOrderIn(ds *dataset.Dataset, customerID int64, r window.Range) bool {
	for _, o := range ds.OrdersOf(customerID) {
		if o.IsRevenueBearing() && o.OrderDate.Before(r.Start) {
			return false
		}
	}
	return true
}
