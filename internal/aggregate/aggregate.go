// Package aggregate implements SQL-style GROUP BY over typed rows.
//
// GroupBy is the inner form: only keys present in the rows produce a group.
// OuterGroupBy is the LEFT JOIN form: every reference row produces a group,
// even one no row matched. Groups always come back in first-seen key order,
// so two runs over the same Dataset render identically.
//
// The aggregate functions follow PostgreSQL:
//   - SUM and COUNT over no rows are 0 (the COALESCE(..., 0) idiom).
//   - AVG, MIN, MAX over no rows are absent, like SQL NULL.
//   - STDDEV is the sample standard deviation and is absent below 2 rows.
//
// Absence is reported through a second bool return instead of a sentinel
// value, so a genuine 0 can never be mistaken for "no data".
package aggregate
