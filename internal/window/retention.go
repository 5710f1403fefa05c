package window

import (
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/model"
)

// Retention is the share of customers active monthsBack months ago who
// ordered again during the last month, as a percentage.
//
// The past cohort is every customer with an order in
// [today - (monthsBack+1) months, today - monthsBack months); the recent
// cohort is every customer with an order on or after today - 1 month.
// An empty past cohort yields 0, never an error.
//
// A negative monthsBack is rejected before anything is computed.
func Retention(ds *dataset.Dataset, monthsBack int, now time.Time) (float64, error) {
	if monthsBack < 0 {
		return 0, errs.NewInvalidParameterError("months_back must not be negative", []errs.FieldError{
			{Field: "months_back", Error: "must be at least 0"},
		})
	}

	today := Today(now)
	past := Between(AddMonths(today, -(monthsBack + 1)), AddMonths(today, -monthsBack))
	recent := Since(AddMonths(today, -1))

	pastCohort := customersIn(ds.RevenueOrders(), past)
	if len(pastCohort) == 0 {
		return 0, nil
	}
	recentCohort := customersIn(ds.RevenueOrders(), recent)

	retained := 0
	for id := range pastCohort {
		if _, ok := recentCohort[id]; ok {
			retained++
		}
	}
	return float64(retained) / float64(len(pastCohort)) * 100, nil
}

func customersIn(orders []model.Order, r Range) map[int64]struct{} {
	set := make(map[int64]struct{})
	for _, o := range orders {
		if r.Contains(o.OrderDate) {
			set[o.CustomerID] = struct{}{}
		}
	}
	return set
}
