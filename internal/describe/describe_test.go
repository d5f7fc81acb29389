package describe

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		kind     domain.ChartKind
		variable string
		want     string
	}{
		{"histogram rainfall", domain.Histogram, "rain_1h", "This histogram illustrates the impact of hourly rainfall on traffic patterns."},
		{"histogram fallback", domain.Histogram, "unknown_var", "This histogram shows the distribution of the selected traffic-related variable."},
		{"scatter has no traffic entry", domain.WeatherScatter, "traffic_volume", "This scatter plot shows the relationship between traffic volume and a selected variable."},
		{"time series quarter", domain.TimeSeries, "quarter", "This time series plot shows the trend of quarterly traffic volume over time."},
		{"sunburst ignores variable", domain.Sunburst, "temp", "This sunburst chart breaks down traffic volume by year, month, and day."},
		{"unknown chart", domain.ChartKind("pie"), "temp", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lookup(tt.kind, tt.variable))
		})
	}
}

func TestLookup_EveryChartHasDefault(t *testing.T) {
	for _, k := range domain.ChartKinds() {
		assert.NotEmpty(t, Lookup(k, ""), k)
	}
}

func TestPanel_DescribeCreatesThenUpdates(t *testing.T) {
	p := NewPanel(discardLogger(), domain.ChartKinds()...)

	_, ok := p.Caption(domain.Histogram)
	assert.False(t, ok)

	p.Describe(domain.Histogram, "temp")
	first, ok := p.Caption(domain.Histogram)
	require.True(t, ok)
	assert.Equal(t, "histogram-description", first.ID)
	assert.Equal(t, "text-center text-muted", first.Class)
	assert.Equal(t, Lookup(domain.Histogram, "temp"), first.Text)

	p.Describe(domain.Histogram, "snow_1h")
	second, _ := p.Caption(domain.Histogram)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, Lookup(domain.Histogram, "snow_1h"), second.Text)
}

func TestPanel_DescribeIsIdempotent(t *testing.T) {
	p := NewPanel(discardLogger(), domain.TimeSeries)

	p.Describe(domain.TimeSeries, "month")
	once, _ := p.Caption(domain.TimeSeries)
	p.Describe(domain.TimeSeries, "month")
	twice, _ := p.Caption(domain.TimeSeries)

	assert.Equal(t, once, twice)
	assert.Len(t, p.containers, 1)
}

func TestPanel_MissingContainerIsLogged(t *testing.T) {
	var buf bytes.Buffer
	p := NewPanel(slog.New(slog.NewTextHandler(&buf, nil)), domain.Histogram)

	assert.NotPanics(t, func() { p.Describe(domain.Sunburst, "") })

	_, ok := p.Caption(domain.Sunburst)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "sunburst-tab-content")
	assert.Contains(t, buf.String(), "level=ERROR")
}
