package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/deppfellow/storefront-analytics/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Querier is the part of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SnapshotRepository materializes the storefront tables from PostgreSQL.
// NUMERIC columns are cast to float8 in SQL so they scan into float64.
type SnapshotRepository struct {
	db     Querier
	logger *zerolog.Logger
}

func NewSnapshotRepository(db Querier, logger *zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

const (
	selectCustomers = `
		SELECT customer_id, customer_name, email, registration_date,
		       COALESCE(city, ''), COALESCE(state, ''), COALESCE(country, ''),
		       COALESCE(preferences, '{}'::jsonb)
		FROM customers
		ORDER BY customer_id`

	selectCategories = `
		SELECT category_id, category_name
		FROM categories
		ORDER BY category_id`

	selectProducts = `
		SELECT product_id, product_name, category_id, price::float8,
		       cost::float8, stock_quantity, average_rating::float8
		FROM products
		ORDER BY product_id`

	selectOrders = `
		SELECT order_id, customer_id, order_date, status,
		       total_amount::float8, tax_amount::float8, shipping_cost::float8
		FROM orders
		ORDER BY order_id`

	selectOrderItems = `
		SELECT order_item_id, order_id, product_id, quantity,
		       unit_price::float8, total_price::float8
		FROM order_items
		ORDER BY order_item_id`
)

// LoadSnapshot reads all five tables. A failure on any table aborts the
// load; partial snapshots are never returned.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context) (dataset.Snapshot, error) {
	start := time.Now()
	var snap dataset.Snapshot
	var err error

	if snap.Categories, err = collect(ctx, r.db, "categories", selectCategories, scanCategory); err != nil {
		return dataset.Snapshot{}, err
	}
	if snap.Customers, err = collect(ctx, r.db, "customers", selectCustomers, scanCustomer); err != nil {
		return dataset.Snapshot{}, err
	}
	if snap.Products, err = collect(ctx, r.db, "products", selectProducts, scanProduct); err != nil {
		return dataset.Snapshot{}, err
	}
	if snap.Orders, err = collect(ctx, r.db, "orders", selectOrders, scanOrder); err != nil {
		return dataset.Snapshot{}, err
	}
	if snap.OrderItems, err = collect(ctx, r.db, "order_items", selectOrderItems, scanOrderItem); err != nil {
		return dataset.Snapshot{}, err
	}

	r.logger.Debug().
		Str("source", "postgres").
		Int("customers", len(snap.Customers)).
		Int("products", len(snap.Products)).
		Int("orders", len(snap.Orders)).
		Int("order_items", len(snap.OrderItems)).
		Dur("duration", time.Since(start)).
		Msg("snapshot loaded")

	return snap, nil
}

func collect[T any](ctx context.Context, db Querier, table, query string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, sqlerr.HandleError(fmt.Errorf("table:%s: %w", table, err))
	}

	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, sqlerr.HandleError(fmt.Errorf("table:%s: %w", table, err))
	}
	return out, nil
}

func scanCustomer(row pgx.CollectableRow) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.RegistrationDate, &c.City, &c.State, &c.Country, &c.Preferences)
	return c, err
}

func scanCategory(row pgx.CollectableRow) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name)
	return c, err
}

func scanProduct(row pgx.CollectableRow) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.Price, &p.Cost, &p.StockQuantity, &p.AverageRating)
	return p, err
}

func scanOrder(row pgx.CollectableRow) (model.Order, error) {
	var o model.Order
	var status string
	err := row.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &status, &o.TotalAmount, &o.TaxAmount, &o.ShippingCost)
	o.Status = model.OrderStatus(status)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (model.OrderItem, error) {
	var it model.OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice)
	return it, err
}

// ReplaceSnapshot truncates the five tables and writes snap in their place,
// inside one transaction. It is how a snapshot file is seeded into a
// freshly migrated database.
func (r *SnapshotRepository) ReplaceSnapshot(ctx context.Context, snap dataset.Snapshot) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return replace(ctx, tx, snap)
	})
	if err != nil {
		return sqlerr.HandleError(err)
	}

	r.logger.Info().
		Int("customers", len(snap.Customers)).
		Int("orders", len(snap.Orders)).
		Msg("snapshot seeded")
	return nil
}

func replace(ctx context.Context, db execer, snap dataset.Snapshot) error {
	exec := func(table, sql string, args ...any) error {
		if _, err := db.Exec(ctx, sql, args...); err != nil {
			return sqlerr.HandleError(fmt.Errorf("table:%s: %w", table, err))
		}
		return nil
	}

	if err := exec("order_items", `TRUNCATE order_items, orders, products, customers, categories`); err != nil {
		return err
	}
	for _, c := range snap.Categories {
		if err := exec("categories", `INSERT INTO categories (category_id, category_name) VALUES ($1, $2)`, c.ID, c.Name); err != nil {
			return err
		}
	}
	for _, c := range snap.Customers {
		prefs := c.Preferences
		if prefs == nil {
			prefs = map[string]any{}
		}
		if err := exec("customers", `
			INSERT INTO customers (customer_id, customer_name, email, registration_date, city, state, country, preferences)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)`,
			c.ID, c.Name, c.Email, c.RegistrationDate, c.City, c.State, c.Country, prefs); err != nil {
			return err
		}
	}
	for _, p := range snap.Products {
		if err := exec("products", `
			INSERT INTO products (product_id, product_name, category_id, price, cost, stock_quantity, average_rating)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, p.Name, p.CategoryID, p.Price, p.Cost, p.StockQuantity, p.AverageRating); err != nil {
			return err
		}
	}
	for _, o := range snap.Orders {
		if err := exec("orders", `
			INSERT INTO orders (order_id, customer_id, order_date, status, total_amount, tax_amount, shipping_cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.ID, o.CustomerID, o.OrderDate, string(o.Status), o.TotalAmount, o.TaxAmount, o.ShippingCost); err != nil {
			return err
		}
	}
	for _, it := range snap.OrderItems {
		if err := exec("order_items", `
			INSERT INTO order_items (order_item_id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice); err != nil {
			return err
		}
	}

	// Explicit ids leave the BIGSERIAL sequences behind the data.
	for _, t := range []struct{ table, column string }{
		{"categories", "category_id"},
		{"customers", "customer_id"},
		{"products", "product_id"},
		{"orders", "order_id"},
		{"order_items", "order_item_id"},
	} {
		if err := exec(t.table, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE(MAX(%s), 1)) FROM %s`,
			t.table, t.column, t.column, t.table)); err != nil {
			return err
		}
	}
	return nil
}
