// Package render draws the dashboard charts. Every renderer is a pure
// function of the current selection and the dataset and returns a complete
// chart; callers replace the previous drawing instead of patching it.
package render

import (
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

// Margin is the space between the plot area and the canvas edge, in pixels.
type Margin struct {
	Top, Right, Bottom, Left int
}

// Layout sizes a chart canvas.
type Layout struct {
	Width  int
	Height int
	Margin Margin
}

// DefaultLayout is the 1200×400 canvas shared by the tabular charts.
func DefaultLayout() Layout {
	return Layout{
		Width:  1200,
		Height: 400,
		Margin: Margin{Top: 30, Right: 30, Bottom: 50, Left: 60},
	}
}

// WithBottom returns the layout with a taller bottom margin, used where the
// x tick labels are rotated.
func (l Layout) WithBottom(bottom int) Layout {
	l.Margin.Bottom = bottom
	return l
}

func (l Layout) padding() chart.Style {
	return chart.Style{
		Padding: chart.Box{
			Top:    l.Margin.Top,
			Left:   l.Margin.Left,
			Right:  l.Margin.Right,
			Bottom: l.Margin.Bottom,
		},
	}
}

// HistogramConfig configures Histogram.
type HistogramConfig struct {
	Layout  Layout
	Buckets int
}

// ScatterConfig configures WeatherScatter and DailyScatter.
type ScatterConfig struct {
	Layout Layout
	// Nice rounds the domains outward to tick values.
	Nice bool
}

// TimeSeriesConfig configures TimeSeries.
type TimeSeriesConfig struct {
	Layout Layout
	Nice   bool
}

// Mark is one hoverable shape of a chart, in data coordinates.
type Mark struct {
	Index   int     `json:"index"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Tooltip string  `json:"tooltip"`
}

// Chart is a finished drawing.
type Chart struct {
	Kind  domain.ChartKind `json:"kind"`
	Title string           `json:"title"`
	SVG   []byte           `json:"-"`
	Marks []Mark           `json:"marks"`
}

// Mark returns the mark with index i.
func (c Chart) Mark(i int) (Mark, bool) {
	if i < 0 || i >= len(c.Marks) {
		return Mark{}, false
	}
	return c.Marks[i], true
}

var (
	steelBlue = drawing.Color{R: 70, G: 130, B: 180, A: 255}
	orange    = drawing.Color{R: 255, G: 165, B: 0, A: 255}
	gridColor = drawing.Color{R: 0, G: 0, B: 0, A: 26}
)

func gridStyle() chart.Style {
	return chart.Style{StrokeColor: gridColor, StrokeWidth: 1}
}

// frameSeries spans the plot domain without drawing anything, so a chart
// with no data still has a valid series and range.
func frameSeries(xlo, xhi, ylo, yhi float64) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name: "frame",
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    chart.Disabled,
		},
		XValues: []float64{xlo, xhi},
		YValues: []float64{ylo, yhi},
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// formatNumber prints a value the way the tooltips show raw data: shortest
// round-trip decimal, no grouping.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
