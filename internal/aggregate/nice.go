// Package aggregate turns parsed records into chart-ready buckets: equal-width
// histogram bins, time rollups, and rounded axis domains.
package aggregate

import "math"

// DomainEpsilon is the half-width applied to a degenerate domain (all values
// equal) so that scales and bins always have a positive span.
const DomainEpsilon = 0.5

// DefaultNiceCount is the tick count used when nicing a scale domain.
const DefaultNiceCount = 10

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Extent returns the minimum and maximum finite values. ok is false when no
// finite value is present.
func Extent(values []float64) (lo, hi float64, ok bool) {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, ok
}

// Widen pads a zero-width domain by DomainEpsilon on each side. Non-degenerate
// domains are returned unchanged.
func Widen(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	pad := math.Max(DomainEpsilon, math.Abs(lo)*1e-9)
	return lo - pad, hi + pad
}

// Nice extends [lo, hi] outward to multiples of a round step chosen for about
// count ticks. It iterates until the step is stable.
func Nice(lo, hi float64, count int) (float64, float64) {
	if count <= 0 || !(hi > lo) {
		return lo, hi
	}
	var prev float64
	for i := 0; i < 10; i++ {
		step := tickIncrement(lo, hi, count)
		if step == prev || step == 0 || math.IsInf(step, 0) || math.IsNaN(step) {
			break
		}
		if step > 0 {
			lo = math.Floor(lo/step) * step
			hi = math.Ceil(hi/step) * step
		} else {
			lo = math.Ceil(lo*step) / step
			hi = math.Floor(hi*step) / step
		}
		prev = step
	}
	return lo, hi
}

// NiceDomain widens a degenerate domain and, when nice is set, rounds it
// outward for count ticks.
func NiceDomain(lo, hi float64, count int, nice bool) (float64, float64) {
	lo, hi = Widen(lo, hi)
	if nice {
		lo, hi = Nice(lo, hi, count)
	}
	return lo, hi
}

// tickIncrement returns the round step for about count ticks over [lo, hi].
// Steps below one are returned as the negated inverse (-10 for 0.1) so that
// rounding stays exact in binary floating point.
func tickIncrement(lo, hi float64, count int) float64 {
	step := (hi - lo) / float64(count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}
