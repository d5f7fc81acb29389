package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order when parsing date_time.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseRecord converts a textual CSV row into a Record. Timestamps without an
// explicit offset are interpreted in loc (UTC when nil). Nothing is rejected:
// bad numbers become NaN and bad timestamps become the zero time.
func ParseRecord(raw RawRecord, loc *time.Location) Record {
	return Record{
		TrafficVolume:  ParseNumber(raw.TrafficVolume),
		Temp:           ParseNumber(raw.Temp),
		Rain1h:         ParseNumber(raw.Rain1h),
		Snow1h:         ParseNumber(raw.Snow1h),
		CloudsAll:      ParseNumber(raw.CloudsAll),
		HolidayIndexed: ParseNumber(raw.HolidayIndexed),
		DateTime:       ParseTimestamp(raw.DateTime, loc),
	}
}

// ParseNumber parses decimal text. Blank text is 0, anything unparsable is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseTimestamp parses an ISO-style timestamp, returning the zero time when
// no layout matches.
func ParseTimestamp(s string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
