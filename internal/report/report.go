// Package report assembles the finished result tables callers consume.
//
// Each Build* function is a pure composition of the aggregate, classify
// and window packages over one Dataset. Reports never touch I/O and never
// read the wall clock: the reference time is always passed in.
//
// Money and percentages are rounded half away from zero to two decimals
// at the very end, after every intermediate figure has been computed at
// full precision. Row order is always total: ties fall back to ids or
// names so a report renders identically on every run.
package report
