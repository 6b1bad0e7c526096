package choropleth

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/arc-research/housing-dashboard/internal/format"
	"github.com/arc-research/housing-dashboard/internal/model"
)

// Layer is a GeoJSON layer description consumed verbatim by the map renderer.
type Layer struct {
	ID                 string                     `json:"id"`
	Type               string                     `json:"type"`
	Data               *geojson.FeatureCollection `json:"data"`
	Pickable           bool                       `json:"pickable"`
	AutoHighlight      bool                       `json:"auto_highlight"`
	HighlightColor     *[4]uint8                  `json:"highlight_color,omitempty"`
	Filled             bool                       `json:"filled"`
	Stroked            bool                       `json:"stroked"`
	Extruded           bool                       `json:"extruded"`
	Opacity            float64                    `json:"opacity"`
	LineColor          [4]uint8                   `json:"line_color"`
	LineWidthMinPixels int                        `json:"line_width_min_pixels"`
}

// MapLayers is the output of Assemble.
type MapLayers struct {
	Choropleth Layer         `json:"choropleth"`
	Boundaries Layer         `json:"boundaries"`
	Legend     []LegendEntry `json:"legend"`
}

// LayerOptions controls presentation details of the assembled layers.
type LayerOptions struct {
	// Format renders the value_formatted property and legend labels.
	Format format.Formatter
	// BoundaryColor is the county outline colour; it must contrast with the basemap.
	BoundaryColor Color
	// Elevation, when non-nil, extrudes each region by the aligned value
	// multiplied by ElevationScale. Nil entries extrude to zero.
	Elevation      []*float64
	ElevationScale float64
}

// Feature property keys.
const (
	PropRegionID       = "region_id"
	PropCountyName     = "county_name"
	PropValue          = "value"
	PropValueFormatted = "value_formatted"
	PropFillColor      = "fill_color"
	PropBin            = "bin"
	PropElevation      = "elevation"
	PropName           = "name"
)

var (
	regionLineColor = [4]uint8{255, 255, 255, 50}
	highlightColor  = [4]uint8{255, 255, 255, 128}
)

// Assemble joins classification colours and formatted values onto each
// record's geometry and builds the county outline layer and the legend.
// Records and classification must be aligned by position. Records without a
// value or without a geometry produce no feature.
func Assemble(records []model.RegionRecord, c Classification, boundaries []model.Boundary, opts LayerOptions) (*MapLayers, error) {
	if len(records) != len(c.Assignments) || len(records) != len(c.Values) {
		return nil, eris.Wrapf(model.ErrDataIntegrity,
			"choropleth: %d records but %d classified values", len(records), len(c.Assignments))
	}
	if opts.Elevation != nil && len(opts.Elevation) != len(records) {
		return nil, eris.Wrapf(model.ErrDataIntegrity,
			"choropleth: %d records but %d elevation values", len(records), len(opts.Elevation))
	}
	if opts.Format == nil {
		opts.Format = format.Plain
	}

	regions := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(records))}
	var skipped int
	for i, r := range records {
		a := c.Assignments[i]
		v := c.Values[i]
		if a.Color == nil || !usable(v) || r.Geometry == nil {
			skipped++
			continue
		}
		props := map[string]interface{}{
			PropRegionID:       r.RegionID,
			PropCountyName:     r.CountyName,
			PropValue:          *v,
			PropValueFormatted: opts.Format(*v),
			PropFillColor:      *a.Color,
			PropBin:            a.Bin,
		}
		if opts.Elevation != nil {
			var e float64
			if ev := opts.Elevation[i]; usable(ev) {
				e = *ev * opts.ElevationScale
			}
			props[PropElevation] = e
		}
		regions.Features = append(regions.Features, &geojson.Feature{
			ID:         r.RegionID,
			Geometry:   r.Geometry,
			Properties: props,
		})
	}
	if skipped > 0 {
		zap.L().Debug("choropleth: regions without value or geometry",
			zap.Int("skipped", skipped),
			zap.Int("total", len(records)),
		)
	}

	outlines := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(boundaries))}
	for _, b := range boundaries {
		if b.Geometry == nil {
			continue
		}
		outlines.Features = append(outlines.Features, &geojson.Feature{
			ID:         b.Name,
			Geometry:   b.Geometry,
			Properties: map[string]interface{}{PropName: b.Name},
		})
	}

	hl := highlightColor
	return &MapLayers{
		Choropleth: Layer{
			ID:                 "choropleth",
			Type:               "GeoJsonLayer",
			Data:               regions,
			Pickable:           true,
			AutoHighlight:      true,
			HighlightColor:     &hl,
			Filled:             true,
			Stroked:            true,
			Extruded:           opts.Elevation != nil,
			Opacity:            0.5,
			LineColor:          regionLineColor,
			LineWidthMinPixels: 1,
		},
		Boundaries: Layer{
			ID:                 "county-boundaries",
			Type:               "GeoJsonLayer",
			Data:               outlines,
			Stroked:            true,
			Opacity:            0.75,
			LineColor:          opts.BoundaryColor.RGBA(255),
			LineWidthMinPixels: 2,
		},
		Legend: Legend(c, opts.Format),
	}, nil
}
