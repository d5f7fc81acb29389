package dashboard

import (
	"fmt"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/errs"
)

// Selection is the dropdown and tab state of one session. The sunburst focus
// lives in the session's zoom controller.
type Selection struct {
	HistogramVariable domain.Variable    `json:"histogram_variable"`
	ScatterVariable   domain.Variable    `json:"scatter_variable"`
	Granularity       domain.Granularity `json:"granularity"`
	ActiveTab         domain.ChartKind   `json:"active_tab"`
}

// DefaultSelection is the state of a fresh page.
func DefaultSelection() Selection {
	return Selection{
		HistogramVariable: domain.TrafficVolume,
		ScatterVariable:   domain.Temp,
		Granularity:       domain.Day,
		ActiveTab:         domain.Histogram,
	}
}

// Option is one dropdown entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	histogramVariables = []domain.Variable{domain.TrafficVolume, domain.Temp, domain.Rain1h, domain.Snow1h, domain.CloudsAll}
	scatterVariables   = []domain.Variable{domain.Temp, domain.Rain1h, domain.Snow1h, domain.CloudsAll}
)

// Options lists the dropdown entries for a chart. Charts without a dropdown
// return nil.
func Options(kind domain.ChartKind) []Option {
	switch kind {
	case domain.Histogram:
		return variableOptions(histogramVariables)
	case domain.WeatherScatter:
		return variableOptions(scatterVariables)
	case domain.TimeSeries:
		var out []Option
		for _, g := range domain.Granularities() {
			out = append(out, Option{Value: string(g), Label: g.Label()})
		}
		return out
	}
	return nil
}

func variableOptions(vs []domain.Variable) []Option {
	out := make([]Option, len(vs))
	for i, v := range vs {
		out[i] = Option{Value: string(v), Label: v.Label()}
	}
	return out
}

// Value returns the dropdown value selected for kind, or "" when the chart
// has no dropdown.
func (s Selection) Value(kind domain.ChartKind) string {
	switch kind {
	case domain.Histogram:
		return string(s.HistogramVariable)
	case domain.WeatherScatter:
		return string(s.ScatterVariable)
	case domain.TimeSeries:
		return string(s.Granularity)
	}
	return ""
}

// With returns the selection with kind's dropdown set to value.
func (s Selection) With(kind domain.ChartKind, value string) (Selection, error) {
	opts := Options(kind)
	if opts == nil {
		return s, errs.NewValidationError(fmt.Sprintf("chart %q has no selector", kind))
	}
	allowed := false
	for _, o := range opts {
		if o.Value == value {
			allowed = true
			break
		}
	}
	if !allowed {
		return s, errs.NewValidationError(fmt.Sprintf("invalid %s selection %q", kind, value))
	}

	switch kind {
	case domain.Histogram:
		s.HistogramVariable = domain.Variable(value)
	case domain.WeatherScatter:
		s.ScatterVariable = domain.Variable(value)
	case domain.TimeSeries:
		s.Granularity = domain.Granularity(value)
	}
	return s, nil
}
