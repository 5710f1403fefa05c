package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/aggregate"
	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/deppfellow/storefront-analytics/internal/window"
)

// SalesReportType selects the shape of a sales report.
type SalesReportType string

const (
	SalesSummaryReport  SalesReportType = "summary"
	SalesDetailedReport SalesReportType = "detailed"
)

// MaxDetailedOrders caps the rows of a detailed sales report.
const MaxDetailedOrders = 1000

// SalesSummary is the body of a summary sales report.
type SalesSummary struct {
	TotalOrders     int     `json:"total_orders"`
	UniqueCustomers int     `json:"unique_customers"`
	TotalRevenue    float64 `json:"total_revenue"`
	AvgOrderValue   float64 `json:"avg_order_value"`
	MinOrderValue   float64 `json:"min_order_value"`
	MaxOrderValue   float64 `json:"max_order_value"`
}

// DetailedOrder is one row of a detailed sales report.
type DetailedOrder struct {
	OrderID      int64             `json:"order_id"`
	OrderDate    time.Time         `json:"order_date"`
	CustomerName string            `json:"customer_name"`
	TotalAmount  float64           `json:"total_amount"`
	Status       model.OrderStatus `json:"status"`
	ItemCount    int               `json:"item_count"`
}

// SalesReport is either a summary or a detailed listing of a period.
type SalesReport struct {
	ReportType SalesReportType `json:"report_type"`
	Period     string          `json:"period"`
	Metrics    *SalesSummary   `json:"metrics,omitempty"`
	Orders     []DetailedOrder `json:"orders,omitempty"`
}

// BuildSalesReport reports on the orders placed between the calendar days
// of start and end, both inclusive.
//
// The summary counts revenue-bearing orders only. The detailed listing is
// an audit view: it includes cancelled orders with their status, newest
// first, at most MaxDetailedOrders of them.
func BuildSalesReport(ds *dataset.Dataset, typ SalesReportType, start, end time.Time) (*SalesReport, error) {
	if err := checkDayRange(start, end); err != nil {
		return nil, err
	}
	r := window.DayRange(start, end)
	rep := &SalesReport{
		ReportType: typ,
		Period:     fmt.Sprintf("%s to %s", start.Format(DateLayout), end.Format(DateLayout)),
	}

	switch typ {
	case SalesSummaryReport:
		orders := ordersIn(ds, r)
		amount := func(o model.Order) float64 { return o.TotalAmount }
		all := aggregate.GroupBy(orders, func(model.Order) struct{} { return struct{}{} },
			aggregate.AvgOf("avg", amount),
			aggregate.MinOf("min", amount),
			aggregate.MaxOf("max", amount),
		)
		totals := totalsOf(orders)

		m := &SalesSummary{
			TotalOrders:     totals.orders,
			UniqueCustomers: totals.customers,
			TotalRevenue:    round2(totals.sales),
		}
		if g := all.Get(struct{}{}); g != nil {
			m.AvgOrderValue = round2(g.Float("avg"))
			m.MinOrderValue = round2(g.Float("min"))
			m.MaxOrderValue = round2(g.Float("max"))
		}
		rep.Metrics = m

	case SalesDetailedReport:
		orders := aggregate.Filter(ds.Orders(), func(o model.Order) bool { return r.Contains(o.OrderDate) })
		sortNewestFirst(orders)
		orders = truncate(orders, MaxDetailedOrders)

		rep.Orders = make([]DetailedOrder, 0, len(orders))
		for _, o := range orders {
			c, _ := ds.Customer(o.CustomerID)
			rep.Orders = append(rep.Orders, DetailedOrder{
				OrderID:      o.ID,
				OrderDate:    o.OrderDate,
				CustomerName: c.Name,
				TotalAmount:  round2(o.TotalAmount),
				Status:       o.Status,
				ItemCount:    len(ds.ItemsOfOrder(o.ID)),
			})
		}

	default:
		return nil, errs.NewInvalidParameterError(
			fmt.Sprintf("unknown report type %q", typ),
			[]errs.FieldError{{Field: "report_type", Error: "must be one of summary detailed"}},
		)
	}

	return rep, nil
}

// OrderListing is one row of the orders-by-date-range listing.
type OrderListing struct {
	OrderID      int64             `json:"order_id"`
	CustomerID   int64             `json:"customer_id"`
	CustomerName string            `json:"customer_name"`
	OrderDate    time.Time         `json:"order_date"`
	Status       model.OrderStatus `json:"status"`
	TotalAmount  float64           `json:"total_amount"`
}

// OrdersByDateRange lists every order placed between the calendar days of
// start and end inclusive, newest first. Cancelled orders are listed too.
// A non-nil status keeps only orders in that status.
func OrdersByDateRange(ds *dataset.Dataset, start, end time.Time, status *model.OrderStatus) ([]OrderListing, error) {
	if err := checkDayRange(start, end); err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		return nil, errs.NewInvalidParameterError(
			fmt.Sprintf("unknown order status %q", *status),
			[]errs.FieldError{{Field: "status", Error: "must be one of confirmed shipped delivered cancelled"}},
		)
	}

	r := window.DayRange(start, end)
	orders := aggregate.Filter(ds.Orders(), func(o model.Order) bool {
		return r.Contains(o.OrderDate) && (status == nil || o.Status == *status)
	})
	sortNewestFirst(orders)

	out := make([]OrderListing, 0, len(orders))
	for _, o := range orders {
		c, _ := ds.Customer(o.CustomerID)
		out = append(out, OrderListing{
			OrderID:      o.ID,
			CustomerID:   o.CustomerID,
			CustomerName: c.Name,
			OrderDate:    o.OrderDate,
			Status:       o.Status,
			TotalAmount:  round2(o.TotalAmount),
		})
	}
	return out, nil
}

func checkDayRange(start, end time.Time) error {
	if end.Before(start) {
		return errs.NewInvalidParameterError("end date is before start date", []errs.FieldError{
			{Field: "end_date", Error: "must not be before start_date"},
		})
	}
	return nil
}

func sortNewestFirst(orders []model.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].OrderDate.After(orders[j].OrderDate)
		}
		return orders[i].ID > orders[j].ID
	})
}
