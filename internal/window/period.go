package window

import "time"

// Today truncates now to midnight in its own location.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// AddMonths moves t by n calendar months, clamping the day to the last day
// of the target month. time.AddDate would normalize Mar 31 - 1 month to
// Mar 2 or 3 instead.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	ty, tm, _ := first.Date()

	if last := DaysIn(ty, tm, t.Location()); d > last {
		d = last
	}
	return time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysIn is the number of days of the given month.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Day truncates t to midnight in its own location, the DATE(t) of SQL.
func Day(t time.Time) time.Time {
	return Today(t)
}

// WholeDays is the number of complete 24h periods from a to b, floored
// at zero.
func WholeDays(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a) / (24 * time.Hour))
}

// Range is a half-open time interval [Start, End). A zero End means the
// range is unbounded above.
type Range struct {
	Start time.Time
	End   time.Time
}

// Since is the range [start, infinity).
func Since(start time.Time) Range {
	return Range{Start: start}
}

// Between is the range [start, end).
func Between(start, end time.Time) Range {
	return Range{Start: start, End: end}
}

// DayRange covers whole days first to last inclusive, the SQL
// `DATE(x) BETWEEN first AND last`.
func DayRange(first, last time.Time) Range {
	return Range{Start: Day(first), End: Day(last).AddDate(0, 0, 1)}
}

// Contains reports whether t falls inside r.
func (r Range) Contains(t time.Time) bool {
	if t.Before(r.Start) {
		return false
	}
	return r.End.IsZero() || t.Before(r.End)
}
