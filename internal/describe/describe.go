// Package describe maps a chart and its selection to the caption shown under
// the chart.
package describe

import (
	"log/slog"
	"sync"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

type entry struct {
	fallback  string
	variables map[string]string
}

var catalog = map[domain.ChartKind]entry{
	domain.Histogram: {
		fallback: "This histogram shows the distribution of the selected traffic-related variable.",
		variables: map[string]string{
			"traffic_volume": "This histogram shows the distribution of traffic volume recorded over time.",
			"temp":           "This histogram shows how temperature variations affect traffic volume.",
			"rain_1h":        "This histogram illustrates the impact of hourly rainfall on traffic patterns.",
			"snow_1h":        "This histogram highlights the influence of snowfall on traffic volume.",
			"clouds_all":     "This histogram displays traffic volume variations based on cloud cover percentage.",
		},
	},
	domain.WeatherScatter: {
		fallback: "This scatter plot shows the relationship between traffic volume and a selected variable.",
		variables: map[string]string{
			"temp":       "This scatter plot shows the relationship between temperature and traffic volume.",
			"rain_1h":    "This scatter plot illustrates how hourly rainfall affects traffic volume.",
			"snow_1h":    "This scatter plot shows the impact of snowfall on traffic volume.",
			"clouds_all": "This scatter plot demonstrates the relationship between cloud cover and traffic volume.",
		},
	},
	domain.TimeSeries: {
		fallback: "This time series plot shows the trend of daily traffic volume over time.",
		variables: map[string]string{
			"day":     "This time series plot shows the trend of daily traffic volume over time.",
			"month":   "This time series plot shows the trend of monthly traffic volume over time.",
			"quarter": "This time series plot shows the trend of quarterly traffic volume over time.",
			"year":    "This time series plot shows the trend of yearly traffic volume over time.",
		},
	},
	domain.DateScatter: {
		fallback: "This scatter plot shows total traffic volume for each day in the dataset.",
	},
	domain.Sunburst: {
		fallback: "This sunburst chart breaks down traffic volume by year, month, and day.",
	},
}

// Lookup returns the caption for a chart and selected variable, falling back
// to the chart's default when the variable has no entry. Unknown charts yield
// an empty string.
func Lookup(kind domain.ChartKind, variable string) string {
	e, ok := catalog[kind]
	if !ok {
		return ""
	}
	if text, ok := e.variables[variable]; ok {
		return text
	}
	return e.fallback
}

// Caption is the text node placed under a chart.
type Caption struct {
	ID    string `json:"id"`
	Class string `json:"class"`
	Text  string `json:"text"`
}

// Container is a chart panel that can hold a caption.
type Container struct {
	ID      string
	Caption *Caption
}

// Panel owns the captions of one page. Describe creates a chart's caption on
// first use and rewrites its text afterward.
type Panel struct {
	mu         sync.Mutex
	containers map[string]*Container
	logger     *slog.Logger
}

// NewPanel creates a panel with one container per chart kind.
func NewPanel(logger *slog.Logger, kinds ...domain.ChartKind) *Panel {
	p := &Panel{containers: make(map[string]*Container, len(kinds)), logger: logger}
	for _, k := range kinds {
		id := k.ContainerID()
		p.containers[id] = &Container{ID: id}
	}
	return p
}

// Describe writes the caption for kind. A missing container is logged and
// skipped.
func (p *Panel) Describe(kind domain.ChartKind, variable string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := kind.ContainerID()
	c, ok := p.containers[id]
	if !ok {
		p.logger.Error("description container not found", "container", id, "chart", kind)
		return
	}
	if c.Caption == nil {
		c.Caption = &Caption{ID: string(kind) + "-description", Class: "text-center text-muted"}
	}
	c.Caption.Text = Lookup(kind, variable)
}

// Caption returns a copy of the chart's caption, if one was written.
func (p *Panel) Caption(kind domain.ChartKind) (Caption, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.containers[kind.ContainerID()]
	if !ok || c.Caption == nil {
		return Caption{}, false
	}
	return *c.Caption, true
}
