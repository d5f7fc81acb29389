package aggregate

import (
	"sort"
	"time"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

// KeyFunc derives a bucket start from a record.
type KeyFunc func(domain.Record) time.Time

// MeasureFunc selects the value summed into a bucket.
type MeasureFunc func(domain.Record) float64

// SumTraffic is the default rollup measure.
func SumTraffic(r domain.Record) float64 {
	return r.TrafficVolume
}

// ByGranularity keys records by the start of their day, month, quarter, or year.
func ByGranularity(g domain.Granularity) KeyFunc {
	return func(r domain.Record) time.Time {
		return Truncate(r.DateTime, g)
	}
}

// Truncate maps t to the start of the granularity period containing it, in
// t's location. Quarters start in January, April, July, and October. The zero
// time truncates to itself.
func Truncate(t time.Time, g domain.Granularity) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case domain.Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case domain.Quarter:
		return time.Date(y, (m-1)/3*3+1, 1, 0, 0, 0, 0, loc)
	case domain.Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}

type instant struct {
	sec  int64
	nsec int
}

// Rollup groups records by key and sums measure per group. A nil measure
// sums traffic volume. Buckets come back in first-seen key order; use
// SortBuckets before drawing a connected line.
func Rollup(records []domain.Record, key KeyFunc, measure MeasureFunc) []domain.Bucket {
	if measure == nil {
		measure = SumTraffic
	}
	index := make(map[instant]int)
	var buckets []domain.Bucket
	for i := range records {
		start := key(records[i])
		k := instant{sec: start.Unix(), nsec: start.Nanosecond()}
		pos, ok := index[k]
		if !ok {
			pos = len(buckets)
			index[k] = pos
			buckets = append(buckets, domain.Bucket{Start: start})
		}
		buckets[pos].Value += measure(records[i])
	}
	return buckets
}

// SortBuckets orders buckets by start instant.
func SortBuckets(buckets []domain.Bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
}
