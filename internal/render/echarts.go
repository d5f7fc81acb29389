package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/madu12/metro-interstate-traffic-volume/internal/aggregate"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/sunburst"
)

// Page is a standalone interactive chart document.
type Page interface {
	Render(w io.Writer) error
}

func pageInit(title string, l Layout) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     strconv.Itoa(l.Width) + "px",
		Height:    strconv.Itoa(l.Height) + "px",
	})
}

// EChartsHistogram is the interactive variant of Histogram.
func EChartsHistogram(records []domain.Record, v domain.Variable, cfg HistogramConfig) Page {
	if cfg.Buckets <= 0 {
		cfg.Buckets = DefaultBuckets
	}
	bins := aggregate.Bin(records, v, cfg.Buckets)
	title := "Histogram of " + v.Label()

	labels := make([]string, len(bins))
	data := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = formatNumber(b.X0) + " - " + formatNumber(b.X1)
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		pageInit(title, cfg.Layout),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: v.Label() + " (bin)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count of " + v.Label()}),
	)
	bar.SetXAxis(labels).AddSeries("Count", data).
		SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{BarGap: "0%", BarCategoryGap: "1%"}))
	return bar
}

// EChartsScatter is the interactive variant of WeatherScatter.
func EChartsScatter(records []domain.Record, x domain.Variable, cfg ScatterConfig) Page {
	title := "Weather Scatter Plot: " + x.Label() + " vs Traffic Volume"
	data := make([]opts.ScatterData, 0, len(records))
	for i := range records {
		xv, _ := records[i].Value(x)
		yv := records[i].TrafficVolume
		if !finite(xv) || !finite(yv) {
			continue
		}
		data = append(data, opts.ScatterData{Value: []float64{xv, yv}, SymbolSize: dotRadius * 2})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		pageInit(title, cfg.Layout),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: x.Label(), Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Traffic Volume", Type: "value"}),
	)
	scatter.AddSeries("records", data)
	return scatter
}

// EChartsTimeSeries is the interactive variant of TimeSeries.
func EChartsTimeSeries(records []domain.Record, g domain.Granularity, cfg TimeSeriesConfig) Page {
	title := "Time Series Plot: " + g.Label() + " Traffic Volume"
	buckets := aggregate.Rollup(timed(records), aggregate.ByGranularity(g), aggregate.SumTraffic)
	aggregate.SortBuckets(buckets)

	labels := make([]string, len(buckets))
	data := make([]opts.LineData, len(buckets))
	for i, b := range buckets {
		labels[i] = FormatPeriod(b.Start, g)
		data[i] = opts.LineData{Value: b.Value}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		pageInit(title, cfg.Layout),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: g.Label()}),
		charts.WithYAxisOpts(opts.YAxis{Name: g.Label() + " Traffic Volume"}),
	)
	line.SetXAxis(labels).AddSeries("Traffic Volume", data)
	return line
}

// EChartsSunburst is the interactive variant of the sunburst. Values follow
// the same leaf-sum policy as the zoom controller's tree.
func EChartsSunburst(tree *sunburst.Tree, cfg SunburstConfig) Page {
	width, height, _, _, _ := cfg.geometry()
	root := tree.Nodes[sunburst.Root]
	title := root.Name

	var build func(i int) *opts.SunBurstData
	build = func(i int) *opts.SunBurstData {
		n := tree.Nodes[i]
		d := &opts.SunBurstData{Name: n.Name, Value: n.Value}
		for _, c := range n.Children {
			d.Children = append(d.Children, build(c))
		}
		return d
	}
	data := make([]opts.SunBurstData, 0, len(root.Children))
	for _, c := range root.Children {
		data = append(data, *build(c))
	}

	sb := charts.NewSunburst()
	sb.SetGlobalOptions(
		pageInit(title, Layout{Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("Total: %s", sunburst.FormatValue(root.Value))}),
	)
	sb.AddSeries(title, data)
	return sb
}
