// Package summary extracts the max, median and min KPIs of a metric column
// together with the region that realizes each one.
package summary

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// Record is one non-null observation.
type Record struct {
	RegionID   string  `json:"region_id"`
	CountyName string  `json:"county_name"`
	Value      float64 `json:"value"`
}

// Stat is a KPI value and the region it belongs to. For the median, Value is
// the statistical median, which may fall between two observations; RegionID
// names the observation nearest to it.
type Stat struct {
	Value       float64 `json:"value"`
	RecordValue float64 `json:"record_value"`
	RegionID    string  `json:"region_id"`
	CountyName  string  `json:"county_name"`
}

// Summary holds the three KPIs of one selection.
type Summary struct {
	Max    Stat `json:"max"`
	Median Stat `json:"median"`
	Min    Stat `json:"min"`
	Count  int  `json:"count"`
}

// Summarize computes max, median and min over records. The caller drops
// null values first. Ties on any statistic go to the lowest region id.
func Summarize(records []Record) (Summary, error) {
	if len(records) == 0 {
		return Summary{}, eris.Wrap(model.ErrEmptyDataset, "summary: no records")
	}

	values := make([]float64, len(records))
	for i, r := range records {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return Summary{}, eris.Wrapf(model.ErrDataIntegrity, "summary: non-finite value for region %s", r.RegionID)
		}
		values[i] = r.Value
	}

	median, err := stats.Median(values)
	if err != nil {
		return Summary{}, eris.Wrap(err, "summary: median")
	}

	hi, lo, mid := 0, 0, 0
	for i := 1; i < len(records); i++ {
		r := records[i]
		if better(r.Value, records[hi].Value, r.RegionID, records[hi].RegionID, func(a, b float64) bool { return a > b }) {
			hi = i
		}
		if better(r.Value, records[lo].Value, r.RegionID, records[lo].RegionID, func(a, b float64) bool { return a < b }) {
			lo = i
		}
		d, best := math.Abs(r.Value-median), math.Abs(records[mid].Value-median)
		if better(d, best, r.RegionID, records[mid].RegionID, func(a, b float64) bool { return a < b }) {
			mid = i
		}
	}

	return Summary{
		Max:    stat(records[hi], records[hi].Value),
		Median: stat(records[mid], median),
		Min:    stat(records[lo], records[lo].Value),
		Count:  len(records),
	}, nil
}

// better reports whether candidate a should replace the current best b,
// falling back to the lower region id on equal keys.
func better(a, b float64, aID, bID string, wins func(a, b float64) bool) bool {
	if wins(a, b) {
		return true
	}
	return a == b && aID < bID
}

func stat(r Record, value float64) Stat {
	return Stat{
		Value:       value,
		RecordValue: r.Value,
		RegionID:    r.RegionID,
		CountyName:  r.CountyName,
	}
}

// FromRecords collects the finite, non-null values of column in record order.
func FromRecords(records []model.RegionRecord, column string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		v := r.Value(column)
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		out = append(out, Record{RegionID: r.RegionID, CountyName: r.CountyName, Value: *v})
	}
	return out
}
