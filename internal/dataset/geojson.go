package dataset

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// LoadGeoJSON reads a FeatureCollection whose properties carry the region
// id, the county and numeric metrics.
func LoadGeoJSON(path, name string) (*model.Dataset, error) {
	fc, err := readFeatureCollection(path)
	if err != nil {
		return nil, err
	}

	// Column set is the union of property keys across features, in sorted order.
	keySet := make(map[string]struct{})
	for _, f := range fc.Features {
		for k := range f.Properties {
			keySet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	numeric := func(i int) bool {
		for _, f := range fc.Features {
			switch f.Properties[keys[i]].(type) {
			case nil:
				continue
			case float64:
				return true
			default:
				return false
			}
		}
		return false
	}
	l, ok := detectLayout(keys, numeric)
	if !ok {
		return nil, eris.Wrapf(model.ErrDataIntegrity, "geojson: %s has no region id property", path)
	}

	ds := &model.Dataset{Name: name}
	for _, i := range l.metrics {
		ds.Columns = append(ds.Columns, keys[i])
	}
	for _, f := range fc.Features {
		rec := model.RegionRecord{
			RegionID: NormalizeRegionID(cellString(f.Properties[keys[l.region]])),
			Geometry: f.Geometry,
			Metrics:  make(map[string]*float64, len(l.metrics)),
		}
		if l.county >= 0 {
			rec.CountyName = NormalizeCounty(cellString(f.Properties[keys[l.county]]))
		}
		for _, i := range l.metrics {
			rec.Metrics[keys[i]] = parseMetric(f.Properties[keys[i]])
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// LoadBoundaryGeoJSON reads county outlines from a FeatureCollection.
func LoadBoundaryGeoJSON(path, nameField string) ([]model.Boundary, error) {
	fc, err := readFeatureCollection(path)
	if err != nil {
		return nil, err
	}
	var out []model.Boundary
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		name := cellString(f.Properties[nameField])
		if name == "" {
			name = cellString(f.Properties["NAMELSAD"])
		}
		if name == "" {
			name = cellString(f.Properties["NAME"])
		}
		out = append(out, model.Boundary{Name: NormalizeCounty(name), Geometry: f.Geometry})
	}
	return out, nil
}

func readFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geojson: read %s", path)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "geojson: decode %s", path)
	}
	return &fc, nil
}
