package aggregate

// Func names an aggregate function.
type Func int

const (
	Sum Func = iota
	Count
	Avg
	Min
	Max
	StdDev
)

// String returns the SQL spelling of f.
func (f Func) String() string {
	switch f {
	case Sum:
		return "sum"
	case Count:
		return "count"
	case Avg:
		return "avg"
	case Min:
		return "min"
	case Max:
		return "max"
	case StdDev:
		return "stddev"
	default:
		return "unknown"
	}
}

// Column describes one output column of a grouping: its name, the function
// and the value it reads from each row. Value is ignored for Count.
type Column[T any] struct {
	Name  string
	Func  Func
	Value func(T) float64
}

// SumOf is SUM(value) AS name.
func SumOf[T any](name string, value func(T) float64) Column[T] {
	return Column[T]{Name: name, Func: Sum, Value: value}
}

// CountOf is COUNT(*) AS name.
func CountOf[T any](name string) Column[T] {
	return Column[T]{Name: name, Func: Count}
}

// AvgOf is AVG(value) AS name.
func AvgOf[T any](name string, value func(T) float64) Column[T] {
	return Column[T]{Name: name, Func: Avg, Value: value}
}

// MinOf is MIN(value) AS name.
func MinOf[T any](name string, value func(T) float64) Column[T] {
	return Column[T]{Name: name, Func: Min, Value: value}
}

// MaxOf is MAX(value) AS name.
func MaxOf[T any](name string, value func(T) float64) Column[T] {
	return Column[T]{Name: name, Func: Max, Value: value}
}

// StdDevOf is STDDEV(value) AS name.
func StdDevOf[T any](name string, value func(T) float64) Column[T] {
	return Column[T]{Name: name, Func: StdDev, Value: value}
}

// Aggregate holds the computed columns of one group.
type Aggregate struct {
	rows   int
	funcs  map[string]Func
	values map[string]*accumulator
}

func newAggregate[T any](columns []Column[T]) *Aggregate {
	a := &Aggregate{
		funcs:  make(map[string]Func, len(columns)),
		values: make(map[string]*accumulator, len(columns)),
	}
	for _, s := range columns {
		a.funcs[s.Name] = s.Func
		a.values[s.Name] = &accumulator{}
	}
	return a
}

func add[T any](a *Aggregate, columns []Column[T], row T) {
	a.rows++
	for _, s := range columns {
		var x float64
		if s.Value != nil {
			x = s.Value(row)
		}
		a.values[s.Name].add(x)
	}
}

// Rows is the number of rows folded into the group. It is 0 for an
// outer-join group nothing matched.
func (a *Aggregate) Rows() int {
	return a.rows
}

// Value returns the named column.
//
// ok is false when the column is unknown or when the function has no value
// for this group: Avg, Min, Max over no rows and StdDev over fewer than two.
func (a *Aggregate) Value(name string) (float64, bool) {
	acc, known := a.values[name]
	if !known {
		return 0, false
	}
	return acc.result(a.funcs[name])
}

// Float returns the named column, or 0 when it is absent.
func (a *Aggregate) Float(name string) float64 {
	v, _ := a.Value(name)
	return v
}

// Result is the output of a grouping.
type Result[K comparable] struct {
	// Keys lists every group key in first-seen order.
	Keys   []K
	groups map[K]*Aggregate
}

// Get returns the aggregate of key, or nil if no such group exists.
func (r *Result[K]) Get(key K) *Aggregate {
	return r.groups[key]
}

// Len is the number of groups.
func (r *Result[K]) Len() int {
	return len(r.Keys)
}

func (r *Result[K]) group(key K, create func() *Aggregate) *Aggregate {
	g, ok := r.groups[key]
	if !ok {
		g = create()
		r.groups[key] = g
		r.Keys = append(r.Keys, key)
	}
	return g
}

// GroupBy folds rows into one group per distinct key.
//
// Only keys that occur in rows produce a group, the way GROUP BY behaves
// after an inner join.
func GroupBy[T any, K comparable](rows []T, key func(T) K, columns ...Column[T]) *Result[K] {
	r := &Result[K]{groups: make(map[K]*Aggregate)}
	create := func() *Aggregate { return newAggregate(columns) }

	for _, row := range rows {
		add(r.group(key(row), create), columns, row)
	}
	return r
}

// OuterGroupBy folds rows into one group per reference row.
//
// Every reference key produces a group, in reference order, even when no
// row matches it; those groups report Sum and Count as 0 and every other
// column as absent. Rows whose key matches no reference row are dropped,
// the way a LEFT JOIN from the reference table drops them.
func OuterGroupBy[R any, T any, K comparable](ref []R, refKey func(R) K, rows []T, key func(T) K, columns ...Column[T]) *Result[K] {
	r := &Result[K]{groups: make(map[K]*Aggregate, len(ref))}
	create := func() *Aggregate { return newAggregate(columns) }

	for _, row := range ref {
		r.group(refKey(row), create)
	}
	for _, row := range rows {
		g, ok := r.groups[key(row)]
		if !ok {
			continue
		}
		add(g, columns, row)
	}
	return r
}

// Filter returns the rows for which keep is true, in order.
func Filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}
