package dataset

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// LoadGeoPackage reads the first feature table of a GeoPackage file. The
// table's region, county and numeric columns become RegionRecords.
func LoadGeoPackage(ctx context.Context, path, name string) (*model.Dataset, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, eris.Wrapf(err, "gpkg: open %s", path)
	}
	defer func() { _ = db.Close() }()

	var table, geomCol string
	err = db.QueryRowContext(ctx,
		`SELECT table_name, column_name FROM gpkg_geometry_columns ORDER BY table_name LIMIT 1`,
	).Scan(&table, &geomCol)
	if err != nil {
		return nil, eris.Wrapf(err, "gpkg: find feature table in %s", path)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(table)))
	if err != nil {
		return nil, eris.Wrapf(err, "gpkg: query %s", table)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "gpkg: columns")
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, eris.Wrap(err, "gpkg: column types")
	}

	geomIdx := -1
	for i, c := range columns {
		if strings.EqualFold(c, geomCol) {
			geomIdx = i
		}
	}
	l, ok := detectLayout(columns, func(i int) bool {
		return i != geomIdx && isNumericType(types[i].DatabaseTypeName())
	})
	if !ok {
		return nil, eris.Wrapf(model.ErrDataIntegrity, "gpkg: %s has no region id column", table)
	}

	ds := &model.Dataset{Name: name}
	for _, i := range l.metrics {
		ds.Columns = append(ds.Columns, columns[i])
	}

	var badGeom int
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "gpkg: scan row")
		}

		rec := model.RegionRecord{
			RegionID: NormalizeRegionID(cellString(cells[l.region])),
			Metrics:  make(map[string]*float64, len(l.metrics)),
		}
		if l.county >= 0 {
			rec.CountyName = NormalizeCounty(cellString(cells[l.county]))
		}
		for _, i := range l.metrics {
			rec.Metrics[columns[i]] = parseMetric(cells[i])
		}
		if geomIdx >= 0 {
			if blob, ok := cells[geomIdx].([]byte); ok {
				g, err := DecodeGeoPackageGeometry(blob)
				if err != nil {
					badGeom++
				} else {
					rec.Geometry = g
				}
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "gpkg: iterate rows")
	}

	if badGeom > 0 {
		zap.L().Warn("gpkg: undecodable geometries",
			zap.String("dataset", name),
			zap.Int("count", badGeom),
		)
	}
	zap.L().Debug("gpkg: loaded",
		zap.String("dataset", name),
		zap.String("table", table),
		zap.Int("records", len(ds.Records)),
		zap.Strings("columns", ds.Columns),
	)
	return ds, nil
}

// DecodeGeoPackageGeometry strips the GeoPackage binary header (magic,
// version, flags, SRS id and optional envelope) and decodes the WKB body.
func DecodeGeoPackageGeometry(blob []byte) (geom.T, error) {
	if len(blob) < 8 || blob[0] != 'G' || blob[1] != 'P' {
		return nil, eris.New("gpkg: not a GeoPackage geometry blob")
	}
	flags := blob[3]
	if flags&0x10 != 0 {
		return nil, eris.New("gpkg: empty geometry")
	}

	var envelope int
	switch (flags >> 1) & 0x07 {
	case 0:
	case 1:
		envelope = 32
	case 2, 3:
		envelope = 48
	case 4:
		envelope = 64
	default:
		return nil, eris.Errorf("gpkg: invalid envelope indicator in flags %08b", flags)
	}

	offset := 8 + envelope
	if len(blob) <= offset {
		return nil, eris.New("gpkg: truncated geometry blob")
	}

	g, err := wkb.Unmarshal(blob[offset:])
	if err != nil {
		return nil, eris.Wrap(err, "gpkg: decode WKB")
	}

	var order binary.ByteOrder = binary.BigEndian
	if flags&0x01 != 0 {
		order = binary.LittleEndian
	}
	if srid := int(int32(order.Uint32(blob[4:8]))); srid > 0 {
		switch t := g.(type) {
		case *geom.Polygon:
			t.SetSRID(srid)
		case *geom.MultiPolygon:
			t.SetSRID(srid)
		case *geom.Point:
			t.SetSRID(srid)
		}
	}
	return g, nil
}

func isNumericType(t string) bool {
	t = strings.ToUpper(t)
	for _, p := range []string{"REAL", "DOUBLE", "FLOAT", "NUMERIC", "DECIMAL", "INT", "MEDIUMINT", "BIGINT", "SMALLINT", "TINYINT"} {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
