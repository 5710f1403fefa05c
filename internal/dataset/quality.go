package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/model"
)

// Outlier bounds used by Inspect.
const (
	MaxReasonablePrice       = 10000.0
	MaxReasonableOrderAmount = 50000.0
	MaxReasonableQuantity    = 1000

	// OrderTotalTolerance is the largest accepted gap between an order's
	// total_amount and the sum of its items plus tax and shipping.
	OrderTotalTolerance = 0.01
)

// QualityReport lists data problems found in a raw snapshot.
//
// Every entry is a human-readable sentence starting with a count,
// e.g. "2 customers with missing emails". Empty lists mean no issue.
type QualityReport struct {
	MissingData          []string `json:"missing_data"`
	Duplicates           []string `json:"duplicates"`
	Outliers             []string `json:"outliers"`
	ReferentialIntegrity []string `json:"referential_integrity"`
	Inconsistencies      []string `json:"inconsistencies"`
}

// Clean reports whether no issue of any kind was found.
func (q QualityReport) Clean() bool {
	return len(q.MissingData) == 0 &&
		len(q.Duplicates) == 0 &&
		len(q.Outliers) == 0 &&
		len(q.ReferentialIntegrity) == 0 &&
		len(q.Inconsistencies) == 0
}

// Inspect audits a raw snapshot without loading it.
//
// Unlike Load it never fails: dangling references are counted rather than
// rejected, so a broken snapshot can still be diagnosed.
func Inspect(snap Snapshot) QualityReport {
	q := QualityReport{
		MissingData:          []string{},
		Duplicates:           []string{},
		Outliers:             []string{},
		ReferentialIntegrity: []string{},
		Inconsistencies:      []string{},
	}

	add := func(list *[]string, n int, description string) {
		if n > 0 {
			*list = append(*list, fmt.Sprintf("%d %s", n, description))
		}
	}

	// ---------------- Missing data -------------------------------------------
	var noName, noEmail, badProduct, badOrder int
	for _, c := range snap.Customers {
		if strings.TrimSpace(c.Name) == "" {
			noName++
		}
		if strings.TrimSpace(c.Email) == "" {
			noEmail++
		}
	}
	for _, p := range snap.Products {
		if strings.TrimSpace(p.Name) == "" || p.Price <= 0 {
			badProduct++
		}
	}
	for _, o := range snap.Orders {
		if o.OrderDate.IsZero() || !o.Status.Valid() {
			badOrder++
		}
	}
	add(&q.MissingData, noName, "customers with missing names")
	add(&q.MissingData, noEmail, "customers with missing emails")
	add(&q.MissingData, badProduct, "products with missing critical data")
	add(&q.MissingData, badOrder, "orders with missing critical data")

	// ---------------- Duplicates ---------------------------------------------
	emails := make(map[string]int)
	for _, c := range snap.Customers {
		if e := strings.ToLower(strings.TrimSpace(c.Email)); e != "" {
			emails[e]++
		}
	}
	add(&q.Duplicates, countRepeated(emails), "duplicate customer emails")

	type orderKey struct {
		customerID int64
		date       time.Time
		amount     float64
	}
	orderKeys := make(map[orderKey]int)
	for _, o := range snap.Orders {
		orderKeys[orderKey{o.CustomerID, o.OrderDate.UTC(), o.TotalAmount}]++
	}
	add(&q.Duplicates, countRepeated(orderKeys), "potential duplicate orders")

	// ---------------- Outliers -----------------------------------------------
	var extremePrices, extremeAmounts, extremeQty int
	for _, p := range snap.Products {
		if p.Price < 0 || p.Price > MaxReasonablePrice {
			extremePrices++
		}
	}
	for _, o := range snap.Orders {
		if o.TotalAmount < 0 || o.TotalAmount > MaxReasonableOrderAmount {
			extremeAmounts++
		}
	}
	for _, it := range snap.OrderItems {
		if it.Quantity <= 0 || it.Quantity > MaxReasonableQuantity {
			extremeQty++
		}
	}
	add(&q.Outliers, extremePrices, "products with extreme prices")
	add(&q.Outliers, extremeAmounts, "orders with extreme amounts")
	add(&q.Outliers, extremeQty, "order items with extreme quantities")

	// ---------------- Referential integrity ----------------------------------
	customers := idSet(snap.Customers, func(c model.Customer) int64 { return c.ID })
	categories := idSet(snap.Categories, func(c model.Category) int64 { return c.ID })
	products := idSet(snap.Products, func(p model.Product) int64 { return p.ID })
	orders := idSet(snap.Orders, func(o model.Order) int64 { return o.ID })

	var badCategory, badCustomer, badItemOrder, badItemProduct int
	for _, p := range snap.Products {
		if _, ok := categories[p.CategoryID]; !ok {
			badCategory++
		}
	}
	for _, o := range snap.Orders {
		if _, ok := customers[o.CustomerID]; !ok {
			badCustomer++
		}
	}
	for _, it := range snap.OrderItems {
		if _, ok := orders[it.OrderID]; !ok {
			badItemOrder++
		}
		if _, ok := products[it.ProductID]; !ok {
			badItemProduct++
		}
	}
	add(&q.ReferentialIntegrity, badCategory, "products with invalid category_id")
	add(&q.ReferentialIntegrity, badCustomer, "orders with invalid customer_id")
	add(&q.ReferentialIntegrity, badItemOrder, "order_items with invalid order_id")
	add(&q.ReferentialIntegrity, badItemProduct, "order_items with invalid product_id")

	// ---------------- Derived totals -----------------------------------------
	itemTotals := make(map[int64]float64)
	var badLineTotals int
	for _, it := range snap.OrderItems {
		itemTotals[it.OrderID] += it.TotalPrice
		if math.Abs(float64(it.Quantity)*it.UnitPrice-it.TotalPrice) > OrderTotalTolerance {
			badLineTotals++
		}
	}
	var badOrderTotals int
	for _, o := range snap.Orders {
		expected := itemTotals[o.ID] + o.TaxAmount + o.ShippingCost
		if math.Abs(expected-o.TotalAmount) > OrderTotalTolerance {
			badOrderTotals++
		}
	}
	add(&q.Inconsistencies, badLineTotals, "order items whose total_price differs from quantity x unit_price")
	add(&q.Inconsistencies, badOrderTotals, "orders whose total_amount differs from items + tax + shipping")

	return q
}

func countRepeated[K comparable](counts map[K]int) int {
	n := 0
	for _, c := range counts {
		if c > 1 {
			n++
		}
	}
	return n
}

func idSet[T any](rows []T, id func(T) int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		set[id(r)] = struct{}{}
	}
	return set
}
