package model

import "time"

// OrderStatus is a string-based enum describing where an order is in its lifecycle.
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsRevenueBearing reports whether orders in this status count towards revenue.
//
// Cancelled orders stay in the snapshot for audit listings but never
// contribute to sales, spend, units or activity metrics.
func (s OrderStatus) IsRevenueBearing() bool {
	return s != OrderStatusCancelled
}

// Customer is a row of the customers table.
type Customer struct {
	ID               int64          `json:"id" yaml:"id"`
	Name             string         `json:"name" yaml:"name"`
	Email            string         `json:"email" yaml:"email"`
	RegistrationDate time.Time      `json:"registration_date" yaml:"registration_date"`
	City             string         `json:"city,omitempty" yaml:"city"`
	State            string         `json:"state,omitempty" yaml:"state"`
	Country          string         `json:"country,omitempty" yaml:"country"`
	Preferences      map[string]any `json:"preferences,omitempty" yaml:"preferences"`
}

// Category is a row of the categories table.
type Category struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Product is a row of the products table.
//
// Cost and AverageRating are optional; nil means the column was NULL.
type Product struct {
	ID            int64    `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	CategoryID    int64    `json:"category_id" yaml:"category_id"`
	Price         float64  `json:"price" yaml:"price"`
	Cost          *float64 `json:"cost,omitempty" yaml:"cost"`
	StockQuantity int      `json:"stock_quantity" yaml:"stock_quantity"`
	AverageRating *float64 `json:"average_rating,omitempty" yaml:"average_rating"`
}

// Order is a row of the orders table.
type Order struct {
	ID           int64       `json:"id" yaml:"id"`
	CustomerID   int64       `json:"customer_id" yaml:"customer_id"`
	OrderDate    time.Time   `json:"order_date" yaml:"order_date"`
	Status       OrderStatus `json:"status" yaml:"status"`
	TotalAmount  float64     `json:"total_amount" yaml:"total_amount"`
	TaxAmount    float64     `json:"tax_amount" yaml:"tax_amount"`
	ShippingCost float64     `json:"shipping_cost" yaml:"shipping_cost"`
}

// IsRevenueBearing is a shorthand for o.Status.IsRevenueBearing().
func (o Order) IsRevenueBearing() bool {
	return o.Status.IsRevenueBearing()
}

// OrderItem is a row of the order_items table.
//
// TotalPrice is stored, not derived, and is expected to equal
// Quantity * UnitPrice.
type OrderItem struct {
	ID         int64   `json:"id" yaml:"id"`
	OrderID    int64   `json:"order_id" yaml:"order_id"`
	ProductID  int64   `json:"product_id" yaml:"product_id"`
	Quantity   int     `json:"quantity" yaml:"quantity"`
	UnitPrice  float64 `json:"unit_price" yaml:"unit_price"`
	TotalPrice float64 `json:"total_price" yaml:"total_price"`
}
