package aggregate

import (
	"math"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

// Bin counts the records' values of v into bucketCount equal-width bins over
// the niced extent. Adjacent bins share edges exactly and the maximum lands in
// the last bin. Non-finite values are skipped, so the counts sum to the number
// of finite inputs. It returns nil when there is nothing to bin.
func Bin(records []domain.Record, v domain.Variable, bucketCount int) []domain.Bin {
	if bucketCount <= 0 {
		return nil
	}
	values := make([]float64, 0, len(records))
	for i := range records {
		x, ok := records[i].Value(v)
		if !ok || math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		values = append(values, x)
	}
	lo, hi, ok := Extent(values)
	if !ok {
		return nil
	}
	lo, hi = NiceDomain(lo, hi, bucketCount, true)

	edges := binEdges(lo, hi, bucketCount)
	bins := make([]domain.Bin, bucketCount)
	for i := range bins {
		bins[i] = domain.Bin{X0: edges[i], X1: edges[i+1]}
	}
	for _, x := range values {
		bins[binIndex(edges, x)].Count++
	}
	return bins
}

// binEdges splits [lo, hi] into n spans. The last edge is hi exactly.
func binEdges(lo, hi float64, n int) []float64 {
	edges := make([]float64, n+1)
	width := (hi - lo) / float64(n)
	for i := 0; i < n; i++ {
		edges[i] = lo + width*float64(i)
	}
	edges[n] = hi
	return edges
}

// binIndex locates x in the half-open bins described by edges, folding the
// upper bound into the last bin.
func binIndex(edges []float64, x float64) int {
	n := len(edges) - 1
	i := int((x - edges[0]) / (edges[n] - edges[0]) * float64(n))
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	for i > 0 && x < edges[i] {
		i--
	}
	for i < n-1 && x >= edges[i+1] {
		i++
	}
	return i
}
