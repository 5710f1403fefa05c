package report

import (
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/window"
)

// TrendReport is the monthly trend of one year.
type TrendReport struct {
	Year         int                 `json:"year"`
	GrowthPolicy window.GrowthPolicy `json:"growth_policy"`
	Months       []window.MonthTrend `json:"months"`
}

// BuildMonthlyTrends renders window.MonthlyTrend for output, with months
// taken in loc.
func BuildMonthlyTrends(ds *dataset.Dataset, year int, policy window.GrowthPolicy, loc *time.Location) (*TrendReport, error) {
	months, err := window.MonthlyTrend(ds, year, policy, loc)
	if err != nil {
		return nil, err
	}
	for i := range months {
		months[i].Revenue = round2(months[i].Revenue)
		months[i].AvgOrderValue = round2(months[i].AvgOrderValue)
		months[i].GrowthRate = round2(months[i].GrowthRate)
	}
	if policy == "" {
		policy = window.CalendarAdjacent
	}
	return &TrendReport{Year: year, GrowthPolicy: policy, Months: months}, nil
}

// AnomalyRow is a rounded anomaly with its day rendered as a date.
type AnomalyRow struct {
	Date         string             `json:"date"`
	DailyRevenue float64            `json:"daily_revenue"`
	MeanRevenue  float64            `json:"mean_revenue"`
	ZScore       float64            `json:"z_score"`
	Type         window.AnomalyType `json:"anomaly_type"`
}

// BuildAnomalies renders window.Anomalies for output.
func BuildAnomalies(ds *dataset.Dataset, now time.Time) []AnomalyRow {
	found := window.Anomalies(ds, now)
	out := make([]AnomalyRow, 0, len(found))
	for _, a := range found {
		out = append(out, AnomalyRow{
			Date:         a.Date.Format(DateLayout),
			DailyRevenue: round2(a.DailyRevenue),
			MeanRevenue:  round2(a.MeanRevenue),
			ZScore:       round2(a.ZScore),
			Type:         a.Type,
		})
	}
	return out
}
