// Package dataset holds the in-memory snapshot every report reads from.
//
// A Snapshot is the raw, fully materialized copy of the five tables as a
// source delivered them. Load checks it for key and reference integrity
// and turns it into a Dataset: the same rows plus primary-key and
// foreign-key indexes precomputed once, so joins are O(1) amortized.
//
// A Dataset is never mutated after Load. It can be shared between
// goroutines without locking; every analytical call receives it explicitly.
package dataset
