package window

import (
	"math"
	"sort"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/aggregate"
	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/model"
)

const (
	// AnomalyWindowDays is how far back daily revenue is examined.
	AnomalyWindowDays = 90

	// AnomalyThreshold is the z-score a day must exceed to be flagged.
	AnomalyThreshold = 2.0
)

// AnomalyType tells whether a flagged day sold more or less than usual.
type AnomalyType string

const (
	Spike AnomalyType = "spike"
	Drop  AnomalyType = "drop"
)

// Anomaly is a day whose revenue is far from the window mean.
type Anomaly struct {
	Date         time.Time   `json:"date"`
	DailyRevenue float64     `json:"daily_revenue"`
	MeanRevenue  float64     `json:"mean_revenue"`
	ZScore       float64     `json:"z_score"`
	Type         AnomalyType `json:"anomaly_type"`
}

// Anomalies flags days of the last 90 whose revenue deviates from the mean
// by more than two sample standard deviations.
//
// Days are calendar days in the location of now. Only days with at least
// one order take part. With fewer than two such
// days, or with no variance at all, nothing is flagged. Results are
// sorted by z-score descending, then by date.
func Anomalies(ds *dataset.Dataset, now time.Time) []Anomaly {
	today := Today(now)
	window := Between(today.AddDate(0, 0, -AnomalyWindowDays), today.AddDate(0, 0, 1))

	recent := aggregate.Filter(ds.RevenueOrders(), func(o model.Order) bool {
		return window.Contains(o.OrderDate)
	})
	loc := now.Location()
	daily := aggregate.GroupBy(recent, func(o model.Order) time.Time { return Day(o.OrderDate.In(loc)) },
		aggregate.SumOf("revenue", func(o model.Order) float64 { return o.TotalAmount }),
	)

	revenues := make([]float64, 0, daily.Len())
	for _, day := range daily.Keys {
		revenues = append(revenues, daily.Get(day).Float("revenue"))
	}

	mean, _ := aggregate.Mean(revenues)
	stddev, ok := aggregate.SampleStdDev(revenues)
	if !ok || stddev == 0 {
		return []Anomaly{}
	}

	out := []Anomaly{}
	for i, day := range daily.Keys {
		rev := revenues[i]
		z := math.Abs(rev-mean) / stddev
		if z <= AnomalyThreshold {
			continue
		}

		typ := Drop
		if rev > mean {
			typ = Spike
		}
		out = append(out, Anomaly{
			Date:         day,
			DailyRevenue: rev,
			MeanRevenue:  mean,
			ZScore:       z,
			Type:         typ,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ZScore != out[j].ZScore {
			return out[i].ZScore > out[j].ZScore
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
