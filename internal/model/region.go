// Package model defines the records shared by the loader, the choropleth
// pipeline and the dashboard renderer.
package model

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// RegionRecord is one ZIP code of a dataset snapshot.
type RegionRecord struct {
	RegionID   string              `json:"region_id"`
	CountyName string              `json:"county_name"`
	Geometry   geom.T              `json:"-"`
	Metrics    map[string]*float64 `json:"metrics"`
}

// Value returns the metric stored under column, or nil when the record has
// no data for it.
func (r RegionRecord) Value(column string) *float64 {
	if r.Metrics == nil {
		return nil
	}
	return r.Metrics[column]
}

// Boundary is a county outline drawn over the choropleth.
type Boundary struct {
	Name     string `json:"name"`
	Geometry geom.T `json:"-"`
}

// Dataset is an immutable, loaded snapshot of region records.
type Dataset struct {
	Name    string         `json:"name"`
	Columns []string       `json:"columns"`
	Records []RegionRecord `json:"records"`
}

// HasColumn reports whether column is one of the dataset's metric columns.
func (d *Dataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Validate checks that region ids are non-empty and unique.
func (d *Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.Records))
	for i, r := range d.Records {
		if r.RegionID == "" {
			return eris.Wrapf(ErrDataIntegrity, "dataset %s: record %d has no region id", d.Name, i)
		}
		if _, dup := seen[r.RegionID]; dup {
			return eris.Wrapf(ErrDataIntegrity, "dataset %s: duplicate region id %s", d.Name, r.RegionID)
		}
		seen[r.RegionID] = struct{}{}
	}
	return nil
}

// SortByRegion orders records by region id so that row order and id order
// agree for every downstream tie-break.
func (d *Dataset) SortByRegion() {
	sort.SliceStable(d.Records, func(i, j int) bool {
		return d.Records[i].RegionID < d.Records[j].RegionID
	})
}

// CheckCounties verifies that every region present in more than one dataset
// maps to the same county name in each.
func CheckCounties(datasets ...*Dataset) error {
	owner := make(map[string]string)
	source := make(map[string]string)
	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		for _, r := range ds.Records {
			prev, ok := owner[r.RegionID]
			if !ok {
				owner[r.RegionID] = r.CountyName
				source[r.RegionID] = ds.Name
				continue
			}
			if prev != r.CountyName {
				return eris.Wrapf(ErrDataIntegrity,
					"region %s is %q in %s but %q in %s",
					r.RegionID, prev, source[r.RegionID], r.CountyName, ds.Name)
			}
		}
	}
	return nil
}

// Series is the monthly history of one region.
type Series struct {
	RegionID   string  `json:"region_id"`
	CountyName string  `json:"county_name"`
	Points     []Point `json:"points"`
}

// Point is one observation of a Series.
type Point struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Float returns a pointer to v. Handy for building metric maps.
func Float(v float64) *float64 {
	return &v
}
