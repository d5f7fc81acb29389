package aggregate

import (
	"math"
	"strconv"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

// BuildHierarchy derives the year → month → day tree carried by the sunburst
// dataset. Leaf sizes are summed traffic volume; records without a timestamp
// or with a non-finite volume are left out. Children are in calendar order.
func BuildHierarchy(records []domain.Record, rootName string) domain.HierarchyNode {
	kept := make([]domain.Record, 0, len(records))
	for i := range records {
		r := records[i]
		if !r.HasTime() || math.IsNaN(r.TrafficVolume) || math.IsInf(r.TrafficVolume, 0) {
			continue
		}
		kept = append(kept, r)
	}

	days := Rollup(kept, ByGranularity(domain.Day), nil)
	SortBuckets(days)

	root := domain.HierarchyNode{Name: rootName}
	for _, d := range days {
		y, m, day := d.Start.Date()
		yearName := strconv.Itoa(y)
		if n := len(root.Children); n == 0 || root.Children[n-1].Name != yearName {
			root.Children = append(root.Children, domain.HierarchyNode{Name: yearName})
		}
		year := &root.Children[len(root.Children)-1]

		monthName := m.String()[:3]
		if n := len(year.Children); n == 0 || year.Children[n-1].Name != monthName {
			year.Children = append(year.Children, domain.HierarchyNode{Name: monthName})
		}
		month := &year.Children[len(year.Children)-1]

		size := d.Value
		month.Children = append(month.Children, domain.HierarchyNode{
			Name: strconv.Itoa(day),
			Size: &size,
		})
	}
	return root
}
