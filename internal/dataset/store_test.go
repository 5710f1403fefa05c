package dataset_test

import (
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/dataset/datasettest"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseBuilder() *datasettest.Builder {
	day := datasettest.Date(2024, time.March, 1)
	return datasettest.New().
		Category(1, "Electronics").
		Customer(10, "Ada", "Boston").
		Customer(11, "Grace", "Denver").
		Product(100, "Laptop", 1, 1000, 5).
		Product(101, "Mouse", 1, 25, 50).
		Order(1000, 10, day, model.OrderStatusDelivered, datasettest.Item(100, 1, 1000), datasettest.Item(101, 2, 25)).
		Order(1001, 10, day.AddDate(0, 0, 1), model.OrderStatusCancelled, datasettest.Item(101, 1, 25)).
		Order(1002, 11, day.AddDate(0, 0, 2), model.OrderStatusShipped, datasettest.Item(101, 4, 25))
}

func TestLoad_IndexesByPrimaryAndForeignKey(t *testing.T) {
	ds := baseBuilder().Dataset(t)

	c, ok := ds.Customer(10)
	require.True(t, ok)
	assert.Equal(t, "Ada", c.Name)

	_, ok = ds.Customer(99)
	assert.False(t, ok)

	assert.Len(t, ds.OrdersOf(10), 2)
	assert.Len(t, ds.OrdersOf(11), 1)
	assert.Empty(t, ds.OrdersOf(99))

	assert.Len(t, ds.ItemsOfProduct(101), 3)
	assert.Len(t, ds.ItemsOfOrder(1000), 2)
	assert.Equal(t, "Electronics", ds.CategoryName(100))
	assert.Equal(t, "", ds.CategoryName(404))
}

func TestLoad_RevenueViewsSkipCancelledOrders(t *testing.T) {
	ds := baseBuilder().Dataset(t)

	assert.Len(t, ds.Orders(), 3)
	assert.Len(t, ds.RevenueOrders(), 2)
	assert.Len(t, ds.OrderItems(), 4)
	assert.Len(t, ds.RevenueItems(), 3)
	for _, it := range ds.RevenueItems() {
		assert.NotEqual(t, int64(1001), it.OrderID)
	}
}

func TestLoad_CopiesSnapshotSlices(t *testing.T) {
	snap := baseBuilder().Snapshot()
	ds, err := dataset.Load(snap)
	require.NoError(t, err)

	snap.Customers[0].Name = "Mutated"

	c, _ := ds.Customer(10)
	assert.Equal(t, "Ada", c.Name)
}

func TestLoad_IntegrityErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *dataset.Snapshot)
		code    string
		message string
	}{
		{
			name: "order item references missing product",
			mutate: func(s *dataset.Snapshot) {
				s.OrderItems[0].ProductID = 999
			},
			code:    "DANGLING_REFERENCE",
			message: "order_items 1: product_id references missing products 999",
		},
		{
			name: "order item references missing order",
			mutate: func(s *dataset.Snapshot) {
				s.OrderItems[1].OrderID = 5555
			},
			code:    "DANGLING_REFERENCE",
			message: "order_items 2: order_id references missing orders 5555",
		},
		{
			name: "order references missing customer",
			mutate: func(s *dataset.Snapshot) {
				s.Orders[2].CustomerID = 77
			},
			code:    "DANGLING_REFERENCE",
			message: "orders 1002: customer_id references missing customers 77",
		},
		{
			name: "product references missing category",
			mutate: func(s *dataset.Snapshot) {
				s.Products[1].CategoryID = 3
			},
			code:    "DANGLING_REFERENCE",
			message: "products 101: category_id references missing categories 3",
		},
		{
			name: "duplicate customer id",
			mutate: func(s *dataset.Snapshot) {
				s.Customers[1].ID = 10
			},
			code:    "DUPLICATE_KEY",
			message: "customers 10: duplicate primary key",
		},
		{
			name: "duplicate order item id",
			mutate: func(s *dataset.Snapshot) {
				s.OrderItems[3].ID = 1
			},
			code:    "DUPLICATE_KEY",
			message: "order_items 1: duplicate primary key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := baseBuilder().Snapshot()
			tt.mutate(&snap)

			ds, err := dataset.Load(snap)

			require.Error(t, err)
			assert.Nil(t, ds)
			assert.True(t, errors.Is(err, errs.ErrIntegrity))

			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.message, e.Message)
		})
	}
}

func TestLoad_EmptySnapshot(t *testing.T) {
	ds, err := dataset.Load(dataset.Snapshot{})

	require.NoError(t, err)
	assert.Empty(t, ds.Customers())
	assert.Empty(t, ds.RevenueOrders())
}

func TestSnapshotIn_MovesTimestampsWithoutMutating(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	snap := baseBuilder().Snapshot()
	moved := snap.In(newYork)

	require.Len(t, moved.Orders, len(snap.Orders))
	for i, o := range moved.Orders {
		assert.Equal(t, newYork, o.OrderDate.Location())
		assert.True(t, o.OrderDate.Equal(snap.Orders[i].OrderDate))
		assert.Equal(t, time.UTC, snap.Orders[i].OrderDate.Location())
	}
	for _, c := range moved.Customers {
		assert.Equal(t, newYork, c.RegistrationDate.Location())
	}

	// Midnight UTC on Mar 1 is the evening of Feb 29 in New York.
	assert.Equal(t, 29, moved.Orders[0].OrderDate.Day())
}
