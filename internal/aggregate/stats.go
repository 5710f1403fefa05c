package aggregate

import "math"

// accumulator keeps running totals for every supported function at once.
// Mean and variance use Welford's online update.
type accumulator struct {
	n    int
	sum  float64
	min  float64
	max  float64
	mean float64
	m2   float64
}

func (a *accumulator) add(x float64) {
	a.n++
	a.sum += x
	if a.n == 1 || x < a.min {
		a.min = x
	}
	if a.n == 1 || x > a.max {
		a.max = x
	}

	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)
}

func (a *accumulator) result(f Func) (float64, bool) {
	switch f {
	case Sum:
		return a.sum, true
	case Count:
		return float64(a.n), true
	case Avg:
		if a.n == 0 {
			return 0, false
		}
		return a.sum / float64(a.n), true
	case Min:
		return a.min, a.n > 0
	case Max:
		return a.max, a.n > 0
	case StdDev:
		if a.n < 2 {
			return 0, false
		}
		return math.Sqrt(a.m2 / float64(a.n-1)), true
	default:
		return 0, false
	}
}

// Mean is the arithmetic mean of xs. ok is false for an empty slice.
func Mean(xs []float64) (mean float64, ok bool) {
	var acc accumulator
	for _, x := range xs {
		acc.add(x)
	}
	return acc.result(Avg)
}

// SampleStdDev is the sample (n-1) standard deviation of xs, matching SQL
// STDDEV. ok is false with fewer than two values.
func SampleStdDev(xs []float64) (stddev float64, ok bool) {
	var acc accumulator
	for _, x := range xs {
		acc.add(x)
	}
	return acc.result(StdDev)
}
