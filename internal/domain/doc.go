// Package domain models the Metro Interstate traffic-volume dataset and the
// chart selections made against it.
//
// # Data Source
//
// Hourly observations come from the Metro Interstate Traffic Volume dataset
// (westbound I-94, Minneapolis–St Paul), published as a flat CSV. A second file
// holds the same traffic volume pre-aggregated into a year → month → day tree
// for the sunburst chart. Both files are fetched once and memoized for the
// process lifetime by the dataset cache.
//
// # CSV Conventions
//
// Columns, by header name:
//
//	traffic_volume   hourly vehicle count
//	temp             temperature in kelvin
//	rain_1h          rainfall in mm over the hour
//	snow_1h          snowfall in mm over the hour
//	clouds_all       cloud cover percentage
//	holiday_indexed  categorical holiday flag encoded as an integer
//	date_time        local timestamp, e.g. "2012-10-02 09:00:00"
//
// Malformed values are not rejected:
//
//	Empty numeric text parses as 0.
//	Unparsable numeric text parses as NaN and flows through aggregation.
//	Unparsable timestamps parse as the zero time; see [Record.HasTime].
//
// # Hierarchy Conventions
//
// Tree nodes are shaped {name, size?, children?}. Sizes are read from leaves
// only; an internal node's value is always the sum of its children and a node
// with neither children nor a size contributes zero. See [HierarchyNode.Total].
package domain
