package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/madu12/metro-interstate-traffic-volume/internal/aggregate"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

// FormatPeriod renders a bucket start for tooltips: 2016-01-02, 2016-01,
// 2016-Q1, or 2016.
func FormatPeriod(t time.Time, g domain.Granularity) string {
	switch g {
	case domain.Month:
		return t.Format("2006-01")
	case domain.Quarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), quarterOf(t))
	case domain.Year:
		return t.Format("2006")
	default:
		return t.Format(dayFormat)
	}
}

// formatTick renders an x-axis tick for the granularity.
func formatTick(t time.Time, g domain.Granularity) string {
	switch g {
	case domain.Month:
		return t.Format("Jan 2006")
	case domain.Quarter:
		return fmt.Sprintf("Q%d %d", quarterOf(t), t.Year())
	case domain.Year:
		return t.Format("2006")
	default:
		return t.Format("Jan 2")
	}
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// TimeSeries rolls traffic volume up by granularity, sorts the buckets by
// start, and draws them as a connected line with a hover point per bucket.
func TimeSeries(records []domain.Record, g domain.Granularity, cfg TimeSeriesConfig) (Chart, error) {
	label := g.Label()
	buckets := aggregate.Rollup(timed(records), aggregate.ByGranularity(g), aggregate.SumTraffic)
	aggregate.SortBuckets(buckets)

	times := make([]time.Time, len(buckets))
	values := make([]float64, len(buckets))
	marks := make([]Mark, len(buckets))
	for i, b := range buckets {
		times[i] = b.Start
		values[i] = b.Value
		marks[i] = Mark{
			Index:   i,
			X:       chart.TimeToFloat64(b.Start),
			Y:       b.Value,
			Tooltip: fmt.Sprintf("Date: %s<br>Traffic Volume: %s", FormatPeriod(b.Start, g), formatNumber(b.Value)),
		}
	}

	xlo, xhi := timeDomain(times)
	ylo, yhi, _ := aggregate.Extent(values)
	ylo, yhi = aggregate.NiceDomain(ylo, yhi, aggregate.DefaultNiceCount, cfg.Nice)

	loc := time.UTC
	if len(times) > 0 {
		loc = times[0].Location()
	}

	series := []chart.Series{frameSeries(xlo, xhi, ylo, yhi)}
	if len(times) > 0 {
		series = append(series, chart.TimeSeries{
			Name: label,
			Style: chart.Style{
				StrokeColor: steelBlue,
				StrokeWidth: 1.5,
				DotWidth:    chart.Disabled,
			},
			XValues: times,
			YValues: values,
		})
	}

	title := "Time Series Plot: " + label + " Traffic Volume"
	graph := chart.Chart{
		Title:      title,
		Width:      cfg.Layout.Width,
		Height:     cfg.Layout.Height,
		Background: cfg.Layout.padding(),
		XAxis: chart.XAxis{
			Name:  label + " →",
			Range: &chart.ContinuousRange{Min: xlo, Max: xhi},
			ValueFormatter: func(v interface{}) string {
				f, ok := v.(float64)
				if !ok {
					return ""
				}
				return formatTick(time.Unix(0, int64(f)).In(loc), g)
			},
			GridMajorStyle: gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           "↑ " + label + " Traffic Volume",
			Range:          &chart.ContinuousRange{Min: ylo, Max: yhi},
			GridMajorStyle: gridStyle(),
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return Chart{}, fmt.Errorf("render %s time series: %w", g, err)
	}
	return Chart{Kind: domain.TimeSeries, Title: title, SVG: buf.Bytes(), Marks: marks}, nil
}
