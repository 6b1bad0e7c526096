// Package dataset loads the static dashboard snapshots (GeoPackage, GeoJSON,
// PostGIS, shapefile boundaries, CSV/XLSX history) into model types and
// normalizes their vintage-specific column names.
package dataset

import (
	"strconv"
	"strings"
)

// Column aliases seen across dataset vintages, in order of preference.
var (
	regionAliases = []string{"regionname", "region_id", "zip_code", "zipcode", "zip", "zcta5"}
	countyAliases = []string{"countyname", "county_name", "county"}
)

// nonMetric columns are carried by the source files but are not metrics.
var nonMetric = map[string]bool{
	"regionid":   true,
	"sizerank":   true,
	"regiontype": true,
	"statename":  true,
	"state":      true,
	"city":       true,
	"metro":      true,
	"basedate":   true,
	"fid":        true,
	"ogc_fid":    true,
	"geom":       true,
	"geometry":   true,
}

// countyRenames fixes spellings that differ between vintages.
var countyRenames = map[string]string{
	"Dekalb County": "DeKalb County",
	"Dekalb":        "DeKalb County",
}

// layout records which source columns carry the id, the county and metrics.
type layout struct {
	region  int
	county  int
	metrics []int
}

// detectLayout picks the region and county columns by alias and treats the
// remaining non-reserved columns accepted by isMetric as metrics.
func detectLayout(columns []string, isMetric func(i int) bool) (layout, bool) {
	l := layout{region: -1, county: -1}
	lower := make([]string, len(columns))
	for i, c := range columns {
		lower[i] = strings.ToLower(strings.TrimSpace(c))
	}
	l.region = findAlias(lower, regionAliases)
	l.county = findAlias(lower, countyAliases)
	if l.region < 0 {
		return l, false
	}
	for i, c := range lower {
		if i == l.region || i == l.county || nonMetric[c] {
			continue
		}
		if isMetric == nil || isMetric(i) {
			l.metrics = append(l.metrics, i)
		}
	}
	return l, true
}

func findAlias(columns, aliases []string) int {
	for _, a := range aliases {
		for i, c := range columns {
			if c == a {
				return i
			}
		}
	}
	return -1
}

// NormalizeRegionID trims the id and left-pads numeric ZIP codes that lost
// their leading zero to five digits.
func NormalizeRegionID(raw string) string {
	id := strings.TrimSpace(raw)
	if i := strings.IndexByte(id, '.'); i > 0 && strings.Trim(id[i+1:], "0") == "" {
		id = id[:i]
	}
	if _, err := strconv.Atoi(id); err == nil && len(id) < 5 {
		id = strings.Repeat("0", 5-len(id)) + id
	}
	return id
}

// NormalizeCounty trims the name and applies known spelling fixes.
func NormalizeCounty(raw string) string {
	name := strings.TrimSpace(raw)
	if fixed, ok := countyRenames[name]; ok {
		return fixed
	}
	return name
}

// parseMetric converts a source cell into a metric value. Empty, NA and
// unparseable cells are nil.
func parseMetric(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case float32:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case []byte:
		return parseMetric(string(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
			return nil
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// cellString renders a scalar source cell as text.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
