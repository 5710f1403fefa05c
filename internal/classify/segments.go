package classify

import (
	"sort"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/window"
)

// Segment names a customer segment.
type Segment string

const (
	SegmentFrequent   Segment = "frequent"
	SegmentBigSpender Segment = "big_spender"
	SegmentAtRisk     Segment = "at_risk"
	SegmentNew        Segment = "new"
)

// Segments lists every segment in report order.
var Segments = []Segment{SegmentFrequent, SegmentBigSpender, SegmentAtRisk, SegmentNew}

// Segmentation rule parameters.
const (
	FrequentLookbackMonths = 6
	FrequentMinOrders      = 6
	BigSpenderMinAvg       = 200.0
	AtRiskIdleMonths       = 3
	NewCustomerMonths      = 1
)

// SegmentCustomers assigns customers to the four segments as of now.
//
//   - frequent: more than 5 orders on or after today - 6 months
//   - big_spender: lifetime average order value above 200
//   - at_risk: last order before today - 3 months
//   - new: first order after today - 1 month
//
// Customers without orders belong to no segment. A customer may belong to
// several. Every segment key is present and its ids are ascending.
func SegmentCustomers(ds *dataset.Dataset, now time.Time) map[Segment][]int64 {
	today := window.Today(now)
	frequentSince := window.AddMonths(today, -FrequentLookbackMonths)
	atRiskBefore := window.AddMonths(today, -AtRiskIdleMonths)
	newAfter := window.AddMonths(today, -NewCustomerMonths)

	out := make(map[Segment][]int64, len(Segments))
	for _, s := range Segments {
		out[s] = []int64{}
	}

	for _, c := range ds.Customers() {
		var (
			orders, recent int
			spent          float64
			first, last    time.Time
		)
		for _, o := range ds.OrdersOf(c.ID) {
			if !o.IsRevenueBearing() {
				continue
			}
			if orders == 0 || o.OrderDate.Before(first) {
				first = o.OrderDate
			}
			if orders == 0 || o.OrderDate.After(last) {
				last = o.OrderDate
			}
			orders++
			spent += o.TotalAmount
			if !o.OrderDate.Before(frequentSince) {
				recent++
			}
		}
		if orders == 0 {
			continue
		}

		if recent >= FrequentMinOrders {
			out[SegmentFrequent] = append(out[SegmentFrequent], c.ID)
		}
		if spent/float64(orders) > BigSpenderMinAvg {
			out[SegmentBigSpender] = append(out[SegmentBigSpender], c.ID)
		}
		if last.Before(atRiskBefore) {
			out[SegmentAtRisk] = append(out[SegmentAtRisk], c.ID)
		}
		if first.After(newAfter) {
			out[SegmentNew] = append(out[SegmentNew], c.ID)
		}
	}

	for _, ids := range out {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return out
}
