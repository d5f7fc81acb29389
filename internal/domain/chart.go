package domain

import "fmt"

// ChartKind identifies one chart panel (and its tab).
type ChartKind string

const (
	Histogram      ChartKind = "histogram"
	WeatherScatter ChartKind = "weather_scatter"
	DateScatter    ChartKind = "date_scatter"
	TimeSeries     ChartKind = "time_series"
	Sunburst       ChartKind = "sunburst"
)

// ChartKinds lists the panels in tab order.
func ChartKinds() []ChartKind {
	return []ChartKind{Histogram, WeatherScatter, DateScatter, TimeSeries, Sunburst}
}

// ParseChartKind validates a panel identifier.
func ParseChartKind(s string) (ChartKind, error) {
	for _, k := range ChartKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart kind %q", s)
}

// ContainerID is the id of the element holding the panel's chart and caption.
func (k ChartKind) ContainerID() string {
	return string(k) + "-tab-content"
}

// UsesHierarchy reports whether the panel draws the tree dataset.
func (k ChartKind) UsesHierarchy() bool {
	return k == Sunburst
}

// Granularity is a time-rollup bucket size.
type Granularity string

const (
	Day     Granularity = "day"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

var granularityLabels = map[Granularity]string{
	Day:     "Daily",
	Month:   "Monthly",
	Quarter: "Quarterly",
	Year:    "Yearly",
}

// Granularities lists the rollup sizes from finest to coarsest.
func Granularities() []Granularity {
	return []Granularity{Day, Month, Quarter, Year}
}

// ParseGranularity validates a rollup size.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(s)
	if _, ok := granularityLabels[g]; !ok {
		return "", fmt.Errorf("unknown granularity %q", s)
	}
	return g, nil
}

// Label returns the dropdown text for the granularity.
func (g Granularity) Label() string {
	if l, ok := granularityLabels[g]; ok {
		return l
	}
	return string(g)
}
