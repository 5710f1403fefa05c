// Package window computes metrics over calendar windows of a Dataset.
//
// Every function takes its reference time explicitly (`now`) instead of
// reading the wall clock, so results are reproducible: the same Dataset
// and the same `now` always give the same answer.
//
// Calendar conventions:
//   - "today" is `now` truncated to midnight in now's location.
//   - Month arithmetic clamps to the end of the month, the way PostgreSQL
//     interval arithmetic does (Mar 31 minus 1 month is Feb 28 or 29).
//   - Order timestamps are bucketed into days and months in their own
//     location.
//
// Cancelled orders never count: every function here reads the
// revenue-bearing view of the Dataset.
package window
