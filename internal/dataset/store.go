package dataset

import (
	"slices"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/model"
)

// Snapshot is a fully materialized copy of all tables at one point in time.
//
// Sources (database, snapshot files, test builders) produce a Snapshot;
// nothing downstream reads a Snapshot directly except Load and Inspect.
type Snapshot struct {
	Customers  []model.Customer  `json:"customers" yaml:"customers"`
	Categories []model.Category  `json:"categories" yaml:"categories"`
	Products   []model.Product   `json:"products" yaml:"products"`
	Orders     []model.Order     `json:"orders" yaml:"orders"`
	OrderItems []model.OrderItem `json:"order_items" yaml:"order_items"`
}

// In returns a copy of s with every timestamp moved to loc, so calendar
// days and months of orders and registrations are taken in one timezone
// whatever offsets the source delivered. The receiver is left untouched.
func (s Snapshot) In(loc *time.Location) Snapshot {
	out := s
	out.Customers = slices.Clone(s.Customers)
	for i := range out.Customers {
		out.Customers[i].RegistrationDate = out.Customers[i].RegistrationDate.In(loc)
	}
	out.Orders = slices.Clone(s.Orders)
	for i := range out.Orders {
		out.Orders[i].OrderDate = out.Orders[i].OrderDate.In(loc)
	}
	return out
}

// Dataset is the loaded, indexed, read-only form of a Snapshot.
//
// Slices returned by its methods are shared with the Dataset and must not
// be modified by callers.
type Dataset struct {
	customers  []model.Customer
	categories []model.Category
	products   []model.Product
	orders     []model.Order
	items      []model.OrderItem

	// Primary-key indexes: id -> position in the table slice.
	customerByID map[int64]int
	categoryByID map[int64]int
	productByID  map[int64]int
	orderByID    map[int64]int

	// Foreign-key indexes, rows kept in snapshot order.
	ordersByCustomer map[int64][]model.Order
	itemsByProduct   map[int64][]model.OrderItem
	itemsByOrder     map[int64][]model.OrderItem

	revenueOrders []model.Order
	revenueItems  []model.OrderItem
}

// Load validates snap and builds a Dataset from it.
//
// It fails with an integrity error (errs.KindIntegrity) when:
//   - a primary key appears twice in the same table
//   - a product references a missing category
//   - an order references a missing customer
//   - an order item references a missing order or product
//
// The first violation found aborts the load. Load copies the table slices,
// so later changes to snap do not leak into the Dataset.
func Load(snap Snapshot) (*Dataset, error) {
	ds := &Dataset{
		customers:  append([]model.Customer(nil), snap.Customers...),
		categories: append([]model.Category(nil), snap.Categories...),
		products:   append([]model.Product(nil), snap.Products...),
		orders:     append([]model.Order(nil), snap.Orders...),
		items:      append([]model.OrderItem(nil), snap.OrderItems...),

		customerByID: make(map[int64]int, len(snap.Customers)),
		categoryByID: make(map[int64]int, len(snap.Categories)),
		productByID:  make(map[int64]int, len(snap.Products)),
		orderByID:    make(map[int64]int, len(snap.Orders)),

		ordersByCustomer: make(map[int64][]model.Order),
		itemsByProduct:   make(map[int64][]model.OrderItem),
		itemsByOrder:     make(map[int64][]model.OrderItem),
	}

	for i, c := range ds.customers {
		if _, dup := ds.customerByID[c.ID]; dup {
			return nil, errs.NewDuplicateKeyError("customers", c.ID)
		}
		ds.customerByID[c.ID] = i
	}

	for i, c := range ds.categories {
		if _, dup := ds.categoryByID[c.ID]; dup {
			return nil, errs.NewDuplicateKeyError("categories", c.ID)
		}
		ds.categoryByID[c.ID] = i
	}

	for i, p := range ds.products {
		if _, dup := ds.productByID[p.ID]; dup {
			return nil, errs.NewDuplicateKeyError("products", p.ID)
		}
		if _, ok := ds.categoryByID[p.CategoryID]; !ok {
			return nil, errs.NewDanglingReferenceError("products", p.ID, "category_id", "categories", p.CategoryID)
		}
		ds.productByID[p.ID] = i
	}

	for i, o := range ds.orders {
		if _, dup := ds.orderByID[o.ID]; dup {
			return nil, errs.NewDuplicateKeyError("orders", o.ID)
		}
		if _, ok := ds.customerByID[o.CustomerID]; !ok {
			return nil, errs.NewDanglingReferenceError("orders", o.ID, "customer_id", "customers", o.CustomerID)
		}
		ds.orderByID[o.ID] = i
		ds.ordersByCustomer[o.CustomerID] = append(ds.ordersByCustomer[o.CustomerID], o)
		if o.IsRevenueBearing() {
			ds.revenueOrders = append(ds.revenueOrders, o)
		}
	}

	seenItems := make(map[int64]struct{}, len(ds.items))
	for _, it := range ds.items {
		if _, dup := seenItems[it.ID]; dup {
			return nil, errs.NewDuplicateKeyError("order_items", it.ID)
		}
		seenItems[it.ID] = struct{}{}

		oi, ok := ds.orderByID[it.OrderID]
		if !ok {
			return nil, errs.NewDanglingReferenceError("order_items", it.ID, "order_id", "orders", it.OrderID)
		}
		if _, ok := ds.productByID[it.ProductID]; !ok {
			return nil, errs.NewDanglingReferenceError("order_items", it.ID, "product_id", "products", it.ProductID)
		}
		ds.itemsByProduct[it.ProductID] = append(ds.itemsByProduct[it.ProductID], it)
		ds.itemsByOrder[it.OrderID] = append(ds.itemsByOrder[it.OrderID], it)
		if ds.orders[oi].IsRevenueBearing() {
			ds.revenueItems = append(ds.revenueItems, it)
		}
	}

	return ds, nil
}

// Customers returns every customer in snapshot order.
func (ds *Dataset) Customers() []model.Customer { return ds.customers }

// Categories returns every category in snapshot order.
func (ds *Dataset) Categories() []model.Category { return ds.categories }

// Products returns every product in snapshot order.
func (ds *Dataset) Products() []model.Product { return ds.products }

// Orders returns every order, cancelled ones included, in snapshot order.
func (ds *Dataset) Orders() []model.Order { return ds.orders }

// OrderItems returns every order item in snapshot order.
func (ds *Dataset) OrderItems() []model.OrderItem { return ds.items }

// RevenueOrders returns the orders that are not cancelled.
func (ds *Dataset) RevenueOrders() []model.Order { return ds.revenueOrders }

// RevenueItems returns the items belonging to orders that are not cancelled.
func (ds *Dataset) RevenueItems() []model.OrderItem { return ds.revenueItems }

// Customer looks a customer up by primary key.
func (ds *Dataset) Customer(id int64) (model.Customer, bool) {
	i, ok := ds.customerByID[id]
	if !ok {
		return model.Customer{}, false
	}
	return ds.customers[i], true
}

// Category looks a category up by primary key.
func (ds *Dataset) Category(id int64) (model.Category, bool) {
	i, ok := ds.categoryByID[id]
	if !ok {
		return model.Category{}, false
	}
	return ds.categories[i], true
}

// Product looks a product up by primary key.
func (ds *Dataset) Product(id int64) (model.Product, bool) {
	i, ok := ds.productByID[id]
	if !ok {
		return model.Product{}, false
	}
	return ds.products[i], true
}

// Order looks an order up by primary key.
func (ds *Dataset) Order(id int64) (model.Order, bool) {
	i, ok := ds.orderByID[id]
	if !ok {
		return model.Order{}, false
	}
	return ds.orders[i], true
}

// OrdersOf returns every order placed by customerID, cancelled ones included.
func (ds *Dataset) OrdersOf(customerID int64) []model.Order {
	return ds.ordersByCustomer[customerID]
}

// ItemsOfProduct returns every order item for productID.
func (ds *Dataset) ItemsOfProduct(productID int64) []model.OrderItem {
	return ds.itemsByProduct[productID]
}

// ItemsOfOrder returns the items of orderID.
func (ds *Dataset) ItemsOfOrder(orderID int64) []model.OrderItem {
	return ds.itemsByOrder[orderID]
}

// CategoryName resolves the category name of a product, or "" if the
// product is unknown.
func (ds *Dataset) CategoryName(productID int64) string {
	p, ok := ds.Product(productID)
	if !ok {
		return ""
	}
	c, _ := ds.Category(p.CategoryID)
	return c.Name
}
