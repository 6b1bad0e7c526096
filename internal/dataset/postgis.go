package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/wkb"

	"github.com/arc-research/housing-dashboard/internal/db"
	"github.com/arc-research/housing-dashboard/internal/model"
)

// validTables is the allowlist of PostGIS tables a dataset may be read from.
var validTables = map[string]bool{
	"housing.home_values":       true,
	"housing.forecasts":         true,
	"housing.rent_index":        true,
	"housing.county_boundaries": true,
}

// LoadPostGIS reads a dataset from a table with columns region_id,
// county_name, geom and a jsonb metrics object.
func LoadPostGIS(ctx context.Context, pool db.Pool, table, name string) (*model.Dataset, error) {
	if !validTables[table] {
		return nil, eris.Wrapf(model.ErrConfiguration, "postgis: table %q is not allowed", table)
	}

	sql := fmt.Sprintf(`
		SELECT region_id, county_name, ST_AsBinary(geom), metrics
		FROM %s
		ORDER BY region_id`, table)

	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, eris.Wrapf(err, "postgis: query %s", table)
	}
	defer rows.Close()

	ds := &model.Dataset{Name: name}
	columns := make(map[string]struct{})
	for rows.Next() {
		var (
			regionID, county string
			geomWKB, metrics []byte
		)
		if err := rows.Scan(&regionID, &county, &geomWKB, &metrics); err != nil {
			return nil, eris.Wrap(err, "postgis: scan row")
		}

		rec := model.RegionRecord{
			RegionID:   NormalizeRegionID(regionID),
			CountyName: NormalizeCounty(county),
		}
		if len(geomWKB) > 0 {
			g, err := wkb.Unmarshal(geomWKB)
			if err != nil {
				return nil, eris.Wrapf(err, "postgis: decode geometry of %s", regionID)
			}
			rec.Geometry = g
		}
		if len(metrics) > 0 {
			if err := json.Unmarshal(metrics, &rec.Metrics); err != nil {
				return nil, eris.Wrapf(err, "postgis: decode metrics of %s", regionID)
			}
		}
		for k := range rec.Metrics {
			columns[k] = struct{}{}
		}
		ds.Records = append(ds.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgis: iterate rows")
	}

	for k := range columns {
		ds.Columns = append(ds.Columns, k)
	}
	sort.Strings(ds.Columns)
	return ds, nil
}

// LoadBoundaryPostGIS reads county outlines from the boundary table.
func LoadBoundaryPostGIS(ctx context.Context, pool db.Pool) ([]model.Boundary, error) {
	rows, err := pool.Query(ctx, `SELECT name, ST_AsBinary(geom) FROM housing.county_boundaries ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgis: query county boundaries")
	}
	defer rows.Close()

	var out []model.Boundary
	for rows.Next() {
		var name string
		var geomWKB []byte
		if err := rows.Scan(&name, &geomWKB); err != nil {
			return nil, eris.Wrap(err, "postgis: scan boundary")
		}
		g, err := wkb.Unmarshal(geomWKB)
		if err != nil {
			return nil, eris.Wrapf(err, "postgis: decode boundary %s", name)
		}
		out = append(out, model.Boundary{Name: NormalizeCounty(name), Geometry: g})
	}
	return out, eris.Wrap(rows.Err(), "postgis: iterate boundaries")
}
