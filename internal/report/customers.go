package report

import (
	"sort"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/aggregate"
	"github.com/deppfellow/storefront-analytics/internal/classify"
	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/deppfellow/storefront-analytics/internal/window"
)

// DefaultTopCustomers is the size of the top-customers table when no limit
// is given.
const DefaultTopCustomers = 10

// CustomerSpend is one row of the top-customers table.
type CustomerSpend struct {
	CustomerID   int64   `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	TotalSpent   float64 `json:"total_spent"`
	OrderCount   int     `json:"order_count"`
}

// TopCustomers ranks every customer by lifetime spend, customers without
// orders included at 0. Ties fall back to customer id.
func TopCustomers(ds *dataset.Dataset, limit int) ([]CustomerSpend, error) {
	if limit < 0 {
		return nil, errs.NewInvalidParameterError("limit must not be negative", []errs.FieldError{
			{Field: "limit", Error: "must be at least 0"},
		})
	}
	if limit == 0 {
		limit = DefaultTopCustomers
	}

	spend := aggregate.OuterGroupBy(
		ds.Customers(), func(c model.Customer) int64 { return c.ID },
		ds.RevenueOrders(), func(o model.Order) int64 { return o.CustomerID },
		aggregate.SumOf("spent", func(o model.Order) float64 { return o.TotalAmount }),
		aggregate.CountOf[model.Order]("orders"),
	)

	out := make([]CustomerSpend, 0, spend.Len())
	for _, c := range ds.Customers() {
		g := spend.Get(c.ID)
		out = append(out, CustomerSpend{
			CustomerID:   c.ID,
			CustomerName: c.Name,
			TotalSpent:   g.Float("spent"),
			OrderCount:   int(g.Float("orders")),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalSpent != out[j].TotalSpent {
			return out[i].TotalSpent > out[j].TotalSpent
		}
		return out[i].CustomerID < out[j].CustomerID
	})

	out = truncate(out, limit)
	for i := range out {
		out[i].TotalSpent = round2(out[i].TotalSpent)
	}
	return out, nil
}

// CLVRow is a rounded row of the CLV table.
type CLVRow struct {
	CustomerID            int64   `json:"customer_id"`
	CustomerName          string  `json:"customer_name"`
	TotalSpent            float64 `json:"total_spent"`
	TotalOrders           int     `json:"total_orders"`
	AvgOrderValue         float64 `json:"avg_order_value"`
	OrderFrequencyPerYear float64 `json:"order_frequency_per_year"`
	PredictedCLV          float64 `json:"predicted_clv"`
	LastOrderDate         *string `json:"last_order_date"`
}

// BuildCLVTable renders window.CustomerLifetimeValue for output.
func BuildCLVTable(ds *dataset.Dataset, q window.CLVQuery) ([]CLVRow, error) {
	rows, err := window.CustomerLifetimeValue(ds, q)
	if err != nil {
		return nil, err
	}

	out := make([]CLVRow, 0, len(rows))
	for _, r := range rows {
		row := CLVRow{
			CustomerID:            r.CustomerID,
			CustomerName:          r.CustomerName,
			TotalSpent:            round2(r.TotalSpent),
			TotalOrders:           r.TotalOrders,
			AvgOrderValue:         round2(r.AvgOrderValue),
			OrderFrequencyPerYear: round2(r.OrderFrequencyPerYear),
			PredictedCLV:          round2(r.PredictedCLV),
		}
		if r.LastOrderDate != nil {
			d := r.LastOrderDate.Format(DateLayout)
			row.LastOrderDate = &d
		}
		out = append(out, row)
	}
	return out, nil
}

// RetentionReport is the retention rate for one cohort offset.
type RetentionReport struct {
	MonthsBack    int     `json:"months_back"`
	RetentionRate float64 `json:"retention_rate"`
}

// BuildRetention renders window.Retention for output.
func BuildRetention(ds *dataset.Dataset, monthsBack int, now time.Time) (*RetentionReport, error) {
	rate, err := window.Retention(ds, monthsBack, now)
	if err != nil {
		return nil, err
	}
	return &RetentionReport{MonthsBack: monthsBack, RetentionRate: round2(rate)}, nil
}

// SegmentReport maps every segment to its customer ids.
type SegmentReport map[classify.Segment][]int64

// BuildSegments renders classify.SegmentCustomers for output.
func BuildSegments(ds *dataset.Dataset, now time.Time) SegmentReport {
	return SegmentReport(classify.SegmentCustomers(ds, now))
}
