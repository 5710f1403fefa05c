// Package classify buckets products and customers into named classes.
//
// ABC ranks products by revenue and cuts the cumulative share at 80% and
// 95%. Segments applies four independent rules to every customer. Both
// read only revenue-bearing orders.
package classify
