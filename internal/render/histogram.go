package render

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/madu12/metro-interstate-traffic-volume/internal/aggregate"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

// DefaultBuckets is the histogram bin count.
const DefaultBuckets = 40

// Histogram bins variable over the niced extent and draws one bar per bin.
// Marks are the bins in order.
func Histogram(records []domain.Record, v domain.Variable, cfg HistogramConfig) (Chart, error) {
	if cfg.Buckets <= 0 {
		cfg.Buckets = DefaultBuckets
	}
	label := v.Label()
	bins := aggregate.Bin(records, v, cfg.Buckets)

	xlo, xhi := aggregate.NiceDomain(0, 0, cfg.Buckets, false)
	maxCount := 0
	if len(bins) > 0 {
		xlo, xhi = bins[0].X0, bins[len(bins)-1].X1
		for _, b := range bins {
			maxCount = max(maxCount, b.Count)
		}
	}
	ylo, yhi := aggregate.NiceDomain(0, float64(maxCount), aggregate.DefaultNiceCount, true)

	plotWidth := float64(cfg.Layout.Width - cfg.Layout.Margin.Left - cfg.Layout.Margin.Right)
	gap := 0.0
	if plotWidth > 0 {
		gap = (xhi - xlo) / plotWidth
	}

	series := []chart.Series{frameSeries(xlo, xhi, ylo, yhi)}
	marks := make([]Mark, len(bins))
	for i, b := range bins {
		series = append(series, chart.ContinuousSeries{
			Name: fmt.Sprintf("bin-%d", i),
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				FillColor:   steelBlue,
			},
			XValues: []float64{b.X0 + gap, b.X0 + gap, b.X1, b.X1},
			YValues: []float64{0, float64(b.Count), float64(b.Count), 0},
		})
		marks[i] = Mark{
			Index:   i,
			X:       (b.X0 + b.X1) / 2,
			Y:       float64(b.Count),
			Tooltip: fmt.Sprintf("Bin: %s - %s<br>Count: %d", formatNumber(b.X0), formatNumber(b.X1), b.Count),
		}
	}

	title := "Histogram of " + label
	graph := chart.Chart{
		Title:      title,
		Width:      cfg.Layout.Width,
		Height:     cfg.Layout.Height,
		Background: cfg.Layout.padding(),
		XAxis: chart.XAxis{
			Name:           label + " (bin) →",
			Range:          &chart.ContinuousRange{Min: xlo, Max: xhi},
			GridMajorStyle: gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           "↑ Count of " + label,
			Range:          &chart.ContinuousRange{Min: ylo, Max: yhi},
			GridMajorStyle: gridStyle(),
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return Chart{}, fmt.Errorf("render histogram of %s: %w", v, err)
	}
	return Chart{Kind: domain.Histogram, Title: title, SVG: buf.Bytes(), Marks: marks}, nil
}
