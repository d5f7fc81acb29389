package domain

import (
	"fmt"
	"time"
)

// Variable names a numeric column of the tabular dataset.
type Variable string

const (
	TrafficVolume  Variable = "traffic_volume"
	Temp           Variable = "temp"
	Rain1h         Variable = "rain_1h"
	Snow1h         Variable = "snow_1h"
	CloudsAll      Variable = "clouds_all"
	HolidayIndexed Variable = "holiday_indexed"
)

var variableLabels = map[Variable]string{
	TrafficVolume:  "Traffic Volume",
	Temp:           "Temperature",
	Rain1h:         "Rain (1h)",
	Snow1h:         "Snow (1h)",
	CloudsAll:      "Cloud Cover (%)",
	HolidayIndexed: "Holiday",
}

// Variables lists every numeric column in CSV order.
func Variables() []Variable {
	return []Variable{TrafficVolume, Temp, Rain1h, Snow1h, CloudsAll, HolidayIndexed}
}

// ParseVariable validates a column name.
func ParseVariable(s string) (Variable, error) {
	v := Variable(s)
	if _, ok := variableLabels[v]; !ok {
		return "", fmt.Errorf("unknown variable %q", s)
	}
	return v, nil
}

// Label returns the human-readable dropdown text for the variable.
func (v Variable) Label() string {
	if l, ok := variableLabels[v]; ok {
		return l
	}
	return string(v)
}

// Record is one hourly observation. It is immutable once parsed.
type Record struct {
	TrafficVolume  float64   `json:"traffic_volume"`
	Temp           float64   `json:"temp"`
	Rain1h         float64   `json:"rain_1h"`
	Snow1h         float64   `json:"snow_1h"`
	CloudsAll      float64   `json:"clouds_all"`
	HolidayIndexed float64   `json:"holiday_indexed"`
	DateTime       time.Time `json:"date_time"`
}

// Value returns the measure named by v. Unknown variables yield false.
func (r Record) Value(v Variable) (float64, bool) {
	switch v {
	case TrafficVolume:
		return r.TrafficVolume, true
	case Temp:
		return r.Temp, true
	case Rain1h:
		return r.Rain1h, true
	case Snow1h:
		return r.Snow1h, true
	case CloudsAll:
		return r.CloudsAll, true
	case HolidayIndexed:
		return r.HolidayIndexed, true
	}
	return 0, false
}

// HasTime reports whether the timestamp parsed.
func (r Record) HasTime() bool {
	return !r.DateTime.IsZero()
}

// RawRecord holds one CSV row as text, keyed by the dataset's column names.
type RawRecord struct {
	TrafficVolume  string `json:"traffic_volume"`
	Temp           string `json:"temp"`
	Rain1h         string `json:"rain_1h"`
	Snow1h         string `json:"snow_1h"`
	CloudsAll      string `json:"clouds_all"`
	HolidayIndexed string `json:"holiday_indexed"`
	DateTime       string `json:"date_time"`
}

// Columns lists the CSV header names in dataset order.
func Columns() []string {
	return []string{
		string(TrafficVolume), string(Temp), string(Rain1h), string(Snow1h),
		string(CloudsAll), string(HolidayIndexed), "date_time",
	}
}
