package dataset

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// LoadBoundaryShapefile reads county outlines from a polygon shapefile. The
// name is taken from nameField (case-insensitive), falling back to NAMELSAD
// and NAME.
func LoadBoundaryShapefile(path, nameField string) ([]model.Boundary, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := make(map[string]int)
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	nameIdx := -1
	for _, candidate := range []string{nameField, "namelsad", "name"} {
		if idx, ok := fieldIdx[strings.ToLower(candidate)]; ok && candidate != "" {
			nameIdx = idx
			break
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("shapefile: %s has no name field", path)
	}

	var out []model.Boundary
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		g := PolygonToMultiPolygon(poly)
		if g == nil {
			skipped++
			continue
		}
		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		out = append(out, model.Boundary{Name: NormalizeCounty(name), Geometry: g})
	}

	if skipped > 0 {
		zap.L().Debug("shapefile: skipped records", zap.String("path", path), zap.Int("skipped", skipped))
	}
	return out, nil
}

// PolygonToMultiPolygon converts a shapefile polygon to a geom.MultiPolygon
// with one polygon per ring. Returns nil for empty shapes.
func PolygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || end > int32(len(p.Points)) || start >= end {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("shapefile: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("shapefile: skipping malformed polygon", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
