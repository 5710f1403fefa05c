// Package datasettest provides a fluent builder for test snapshots.
package datasettest

import (
	"fmt"
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/stretchr/testify/require"
)

// Line is one order line passed to Builder.Order.
type Line struct {
	ProductID int64
	Quantity  int
	UnitPrice float64
}

// Item is shorthand for a Line.
func Item(productID int64, quantity int, unitPrice float64) Line {
	return Line{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice}
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// At returns the given day and hour in UTC.
func At(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

// Builder accumulates rows into a dataset.Snapshot.
type Builder struct {
	snap       dataset.Snapshot
	nextItemID int64
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{nextItemID: 1}
}

// Category adds a category.
func (b *Builder) Category(id int64, name string) *Builder {
	b.snap.Categories = append(b.snap.Categories, model.Category{ID: id, Name: name})
	return b
}

// Customer adds a customer living in city, with a generated unique email.
func (b *Builder) Customer(id int64, name, city string) *Builder {
	b.snap.Customers = append(b.snap.Customers, model.Customer{
		ID:               id,
		Name:             name,
		Email:            fmt.Sprintf("customer%d@example.com", id),
		RegistrationDate: Date(2020, time.January, 1),
		City:             city,
		Country:          "US",
	})
	return b
}

// Product adds a product without cost or rating.
func (b *Builder) Product(id int64, name string, categoryID int64, price float64, stock int) *Builder {
	b.snap.Products = append(b.snap.Products, model.Product{
		ID:            id,
		Name:          name,
		CategoryID:    categoryID,
		Price:         price,
		StockQuantity: stock,
	})
	return b
}

// Rated sets the average rating of the most recently added product.
func (b *Builder) Rated(rating float64) *Builder {
	if n := len(b.snap.Products); n > 0 {
		b.snap.Products[n-1].AverageRating = &rating
	}
	return b
}

// Order adds an order whose total_amount is the sum of its lines.
// Tax and shipping are zero so the derived-total invariant holds.
func (b *Builder) Order(id, customerID int64, at time.Time, status model.OrderStatus, lines ...Line) *Builder {
	var total float64
	for _, l := range lines {
		lineTotal := float64(l.Quantity) * l.UnitPrice
		total += lineTotal
		b.snap.OrderItems = append(b.snap.OrderItems, model.OrderItem{
			ID:         b.nextItemID,
			OrderID:    id,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: lineTotal,
		})
		b.nextItemID++
	}

	b.snap.Orders = append(b.snap.Orders, model.Order{
		ID:          id,
		CustomerID:  customerID,
		OrderDate:   at,
		Status:      status,
		TotalAmount: total,
	})
	return b
}

// Amount adds a delivered order with the given total and no items.
// Handy for order-level metrics that never look at lines.
func (b *Builder) Amount(id, customerID int64, at time.Time, total float64) *Builder {
	b.snap.Orders = append(b.snap.Orders, model.Order{
		ID:          id,
		CustomerID:  customerID,
		OrderDate:   at,
		Status:      model.OrderStatusDelivered,
		TotalAmount: total,
	})
	return b
}

// Snapshot returns the accumulated snapshot.
func (b *Builder) Snapshot() dataset.Snapshot {
	return b.snap
}

// Dataset loads the accumulated snapshot, failing the test on error.
func (b *Builder) Dataset(t testing.TB) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(b.snap)
	require.NoError(t, err)
	return ds
}
