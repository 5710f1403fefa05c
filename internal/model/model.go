// Package model defines the typed records of the storefront schema.
//
// Every table of the snapshot (customers, categories, products, orders,
// order_items) has one struct here with named fields, so analytical code
// never reads a column by position.
package model
