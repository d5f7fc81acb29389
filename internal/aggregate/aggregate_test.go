package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func volumes(vs ...float64) []domain.Record {
	recs := make([]domain.Record, len(vs))
	for i, v := range vs {
		recs[i] = domain.Record{TrafficVolume: v, Temp: v / 10, DateTime: at(2016, time.January, 1, i%24)}
	}
	return recs
}

func assertPartition(t *testing.T, bins []domain.Bin, n int) {
	t.Helper()
	total := 0
	for i, b := range bins {
		assert.Less(t, b.X0, b.X1, "bin %d has no width", i)
		if i > 0 {
			assert.Equal(t, bins[i-1].X1, b.X0, "gap or overlap before bin %d", i)
		}
		total += b.Count
	}
	assert.Equal(t, n, total)
}

func TestBin_PartitionsNicedDomain(t *testing.T) {
	vs := make([]float64, 100)
	for i := range vs {
		vs[i] = float64(i + 1)
	}
	bins := Bin(volumes(vs...), domain.TrafficVolume, 40)

	require.Len(t, bins, 40)
	assertPartition(t, bins, 100)
	assert.Equal(t, 0.0, bins[0].X0)
	assert.Equal(t, 100.0, bins[39].X1)
	assert.Equal(t, 3, bins[39].Count, "98, 99 and the maximum share the last bin")
	assert.Equal(t, 2, bins[0].Count)
}

func TestBin_IrregularValues(t *testing.T) {
	recs := volumes(3.7, 1021.5, 6677, 12, 12, 5545, 4516, 0, 7280)
	bins := Bin(recs, domain.TrafficVolume, 30)

	require.Len(t, bins, 30)
	assertPartition(t, bins, len(recs))
	assert.LessOrEqual(t, bins[0].X0, 0.0)
	assert.GreaterOrEqual(t, bins[29].X1, 7280.0)
}

func TestBin_DegenerateDomainIsWidened(t *testing.T) {
	bins := Bin(volumes(5, 5, 5), domain.TrafficVolume, 40)

	require.Len(t, bins, 40)
	assertPartition(t, bins, 3)
	assert.Less(t, bins[0].X0, 5.0)
	assert.Greater(t, bins[39].X1, 5.0)
}

func TestBin_SkipsNonFinite(t *testing.T) {
	bins := Bin(volumes(1, math.NaN(), 2, math.Inf(1)), domain.TrafficVolume, 4)
	assertPartition(t, bins, 2)
}

func TestBin_Empty(t *testing.T) {
	assert.Nil(t, Bin(nil, domain.TrafficVolume, 40))
	assert.Nil(t, Bin(volumes(math.NaN()), domain.TrafficVolume, 40))
	assert.Nil(t, Bin(volumes(1), domain.TrafficVolume, 0))
}

func TestNice(t *testing.T) {
	tests := []struct {
		name           string
		lo, hi         float64
		count          int
		wantLo, wantHi float64
	}{
		{"integers", 1, 100, 40, 0, 100},
		{"fractions", 0.23, 9.7, 10, 0, 10},
		{"small fractions", 0.013, 0.087, 10, 0.01, 0.09},
		{"negative", -17, 42, 10, -20, 45},
		{"already nice", 0, 1000, 10, 0, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := Nice(tt.lo, tt.hi, tt.count)
			assert.InDelta(t, tt.wantLo, lo, 1e-12)
			assert.InDelta(t, tt.wantHi, hi, 1e-12)
		})
	}
}

func TestNiceDomain_Degenerate(t *testing.T) {
	lo, hi := NiceDomain(7, 7, 10, false)
	assert.Equal(t, 6.5, lo)
	assert.Equal(t, 7.5, hi)

	lo, hi = NiceDomain(7, 7, 10, true)
	assert.Less(t, lo, 7.0)
	assert.Greater(t, hi, 7.0)
}

func TestExtent(t *testing.T) {
	lo, hi, ok := Extent([]float64{math.NaN(), 3, -1, 8, math.Inf(-1)})
	require.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 8.0, hi)

	_, _, ok = Extent([]float64{math.NaN()})
	assert.False(t, ok)
}

func TestTruncate(t *testing.T) {
	ts := time.Date(2016, time.August, 17, 13, 45, 12, 99, time.UTC)

	assert.Equal(t, at(2016, time.August, 17, 0), Truncate(ts, domain.Day))
	assert.Equal(t, at(2016, time.August, 1, 0), Truncate(ts, domain.Month))
	assert.Equal(t, at(2016, time.July, 1, 0), Truncate(ts, domain.Quarter))
	assert.Equal(t, at(2016, time.January, 1, 0), Truncate(ts, domain.Year))
	assert.True(t, Truncate(time.Time{}, domain.Month).IsZero())
}

func TestTruncate_QuarterStarts(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		got := Truncate(at(2017, m, 20, 5), domain.Quarter)
		want := time.Month((int(m)-1)/3*3 + 1)
		assert.Equal(t, want, got.Month(), "month %s", m)
		assert.Equal(t, 1, got.Day())
	}
}

func TestTruncate_Idempotent(t *testing.T) {
	for _, g := range domain.Granularities() {
		for m := time.January; m <= time.December; m++ {
			once := Truncate(at(2018, m, 9, 22), g)
			assert.Equal(t, once, Truncate(once, g), "%s of %s", g, m)
		}
	}
}

func TestTruncate_KeepsLocation(t *testing.T) {
	cst := time.FixedZone("CST", -6*60*60)
	got := Truncate(time.Date(2016, time.March, 31, 23, 0, 0, 0, cst), domain.Quarter)
	assert.Equal(t, time.Date(2016, time.January, 1, 0, 0, 0, 0, cst), got)
}

func TestRollup_SameDay(t *testing.T) {
	recs := []domain.Record{
		{TrafficVolume: 100, Temp: 10, DateTime: at(2016, time.May, 3, 8)},
		{TrafficVolume: 200, Temp: 20, DateTime: at(2016, time.May, 3, 17)},
	}
	got := Rollup(recs, ByGranularity(domain.Day), nil)

	want := []domain.Bucket{{Start: at(2016, time.May, 3, 0), Value: 300}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rollup mismatch (-want +got):\n%s", diff)
	}
}

func TestRollup_ConservesTotal(t *testing.T) {
	var recs []domain.Record
	var total float64
	start := at(2015, time.November, 28, 0)
	for i := 0; i < 24*200; i += 7 {
		v := float64(1000 + i%500)
		recs = append(recs, domain.Record{TrafficVolume: v, DateTime: start.Add(time.Duration(i) * time.Hour)})
		total += v
	}

	for _, g := range domain.Granularities() {
		buckets := Rollup(recs, ByGranularity(g), nil)
		var sum float64
		for _, b := range buckets {
			sum += b.Value
			assert.Equal(t, b.Start, Truncate(b.Start, g))
		}
		assert.InDelta(t, total, sum, 1e-6, "granularity %s", g)
	}
}

func TestRollup_FirstSeenOrderAndSort(t *testing.T) {
	recs := []domain.Record{
		{TrafficVolume: 1, DateTime: at(2017, time.March, 1, 0)},
		{TrafficVolume: 2, DateTime: at(2016, time.March, 1, 0)},
		{TrafficVolume: 3, DateTime: at(2017, time.June, 1, 0)},
	}
	buckets := Rollup(recs, ByGranularity(domain.Year), nil)
	require.Len(t, buckets, 2)
	assert.Equal(t, 2017, buckets[0].Start.Year())

	SortBuckets(buckets)
	assert.Equal(t, 2016, buckets[0].Start.Year())
	assert.Equal(t, 4.0, buckets[1].Value)
}

func TestRollup_CustomMeasure(t *testing.T) {
	recs := []domain.Record{
		{Temp: 1.5, DateTime: at(2016, time.May, 3, 8)},
		{Temp: 2.5, DateTime: at(2016, time.May, 9, 8)},
	}
	buckets := Rollup(recs, ByGranularity(domain.Month), func(r domain.Record) float64 { return r.Temp })
	require.Len(t, buckets, 1)
	assert.Equal(t, 4.0, buckets[0].Value)
}

func TestBuildHierarchy(t *testing.T) {
	recs := []domain.Record{
		{TrafficVolume: 10, DateTime: at(2016, time.January, 1, 1)},
		{TrafficVolume: 20, DateTime: at(2016, time.January, 1, 2)},
		{TrafficVolume: 5, DateTime: at(2016, time.February, 3, 0)},
		{TrafficVolume: 7, DateTime: at(2017, time.December, 31, 23)},
		{TrafficVolume: math.NaN(), DateTime: at(2017, time.December, 31, 22)},
		{TrafficVolume: 99},
	}
	root := BuildHierarchy(recs, "Traffic")

	assert.Equal(t, "Traffic", root.Name)
	assert.Equal(t, 42.0, root.Total())
	require.Len(t, root.Children, 2)
	assert.Equal(t, "2016", root.Children[0].Name)
	require.Len(t, root.Children[0].Children, 2)
	assert.Equal(t, "Jan", root.Children[0].Children[0].Name)
	assert.Equal(t, "1", root.Children[0].Children[0].Children[0].Name)
	assert.Equal(t, 30.0, root.Children[0].Children[0].Children[0].LeafSize())
	assert.Equal(t, 3, root.Depth())
}
