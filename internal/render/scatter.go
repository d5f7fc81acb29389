package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/madu12/metro-interstate-traffic-volume/internal/aggregate"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

const (
	dotRadius       = 3
	dailyTickFormat = "Jan 2006"
	dayFormat       = "2006-01-02"
)

// WeatherScatter plots x against traffic volume, one dot per record. Records
// with a non-finite coordinate are not drawn.
func WeatherScatter(records []domain.Record, x domain.Variable, cfg ScatterConfig) (Chart, error) {
	label := x.Label()
	xs := make([]float64, 0, len(records))
	ys := make([]float64, 0, len(records))
	marks := make([]Mark, 0, len(records))
	for i := range records {
		xv, _ := records[i].Value(x)
		yv := records[i].TrafficVolume
		if !finite(xv) || !finite(yv) {
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
		marks = append(marks, Mark{
			Index:   len(marks),
			X:       xv,
			Y:       yv,
			Tooltip: fmt.Sprintf("%s: %s<br>Traffic Volume: %s", label, formatNumber(xv), formatNumber(yv)),
		})
	}

	xlo, xhi, _ := aggregate.Extent(xs)
	ylo, yhi, _ := aggregate.Extent(ys)
	xlo, xhi = aggregate.NiceDomain(xlo, xhi, aggregate.DefaultNiceCount, cfg.Nice)
	ylo, yhi = aggregate.NiceDomain(ylo, yhi, aggregate.DefaultNiceCount, cfg.Nice)

	series := []chart.Series{frameSeries(xlo, xhi, ylo, yhi)}
	if len(xs) > 0 {
		series = append(series, dotSeries("records", xs, ys))
	}

	title := "Weather Scatter Plot: " + label + " vs Traffic Volume"
	graph := chart.Chart{
		Title:      title,
		Width:      cfg.Layout.Width,
		Height:     cfg.Layout.Height,
		Background: cfg.Layout.padding(),
		XAxis: chart.XAxis{
			Name:           label + " →",
			Range:          &chart.ContinuousRange{Min: xlo, Max: xhi},
			GridMajorStyle: gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           "↑ Traffic Volume",
			Range:          &chart.ContinuousRange{Min: ylo, Max: yhi},
			GridMajorStyle: gridStyle(),
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return Chart{}, fmt.Errorf("render scatter of %s: %w", x, err)
	}
	return Chart{Kind: domain.WeatherScatter, Title: title, SVG: buf.Bytes(), Marks: marks}, nil
}

// DailyScatter sums traffic volume per calendar day and plots one dot per
// day. The y domain starts at zero. Records without a timestamp are skipped.
func DailyScatter(records []domain.Record, cfg ScatterConfig) (Chart, error) {
	buckets := aggregate.Rollup(timed(records), aggregate.ByGranularity(domain.Day), aggregate.SumTraffic)

	times := make([]time.Time, len(buckets))
	ys := make([]float64, len(buckets))
	marks := make([]Mark, len(buckets))
	maxY := 0.0
	for i, b := range buckets {
		times[i] = b.Start
		ys[i] = b.Value
		maxY = max(maxY, b.Value)
		marks[i] = Mark{
			Index:   i,
			X:       chart.TimeToFloat64(b.Start),
			Y:       b.Value,
			Tooltip: fmt.Sprintf("Date: %s<br>Traffic Volume: %s", b.Start.Format(dayFormat), formatNumber(b.Value)),
		}
	}

	xlo, xhi := timeDomain(times)
	ylo, yhi := aggregate.NiceDomain(0, maxY, aggregate.DefaultNiceCount, cfg.Nice)

	series := []chart.Series{frameSeries(xlo, xhi, ylo, yhi)}
	if len(times) > 0 {
		series = append(series, chart.TimeSeries{
			Name: "daily",
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    dotRadius,
				DotColor:    orange,
			},
			XValues: times,
			YValues: ys,
		})
	}

	title := "Daily Traffic Volume"
	graph := chart.Chart{
		Title:      title,
		Width:      cfg.Layout.Width,
		Height:     cfg.Layout.Height,
		Background: cfg.Layout.padding(),
		XAxis: chart.XAxis{
			Name:           "Date →",
			Range:          &chart.ContinuousRange{Min: xlo, Max: xhi},
			ValueFormatter: chart.TimeValueFormatterWithFormat(dailyTickFormat),
			GridMajorStyle: gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           "↑ Traffic Volume",
			Range:          &chart.ContinuousRange{Min: ylo, Max: yhi},
			GridMajorStyle: gridStyle(),
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return Chart{}, fmt.Errorf("render daily scatter: %w", err)
	}
	return Chart{Kind: domain.DateScatter, Title: title, SVG: buf.Bytes(), Marks: marks}, nil
}

func dotSeries(name string, xs, ys []float64) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name: name,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    dotRadius,
			DotColor:    orange,
		},
		XValues: xs,
		YValues: ys,
	}
}

// timed drops records whose timestamp did not parse.
func timed(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for i := range records {
		if records[i].HasTime() {
			out = append(out, records[i])
		}
	}
	return out
}

// timeDomain returns the extent of times as chart x values. A single instant
// (or none) is padded by a day on each side.
func timeDomain(times []time.Time) (float64, float64) {
	if len(times) == 0 {
		now := time.Unix(0, 0).UTC()
		return chart.TimeToFloat64(now.AddDate(0, 0, -1)), chart.TimeToFloat64(now.AddDate(0, 0, 1))
	}
	lo, hi := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	if !hi.After(lo) {
		lo, hi = lo.AddDate(0, 0, -1), hi.AddDate(0, 0, 1)
	}
	return chart.TimeToFloat64(lo), chart.TimeToFloat64(hi)
}
