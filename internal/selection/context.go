// Package selection turns validated UI control values into one immutable
// Context per render and resolves it to a dataset column, a record filter and
// map viewport parameters. Every selectable option is a closed enumeration;
// unknown keys are configuration errors.
package selection

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/choropleth"
	"github.com/arc-research/housing-dashboard/internal/format"
	"github.com/arc-research/housing-dashboard/internal/model"
)

// Viewport is the initial map camera.
type Viewport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
	Bearing   float64 `json:"bearing"`
}

// DefaultViewport frames the whole region.
var DefaultViewport = Viewport{Latitude: 33.83, Longitude: -84.38, Zoom: 8}

const countyZoom = 9.5

// Keys are the raw option keys sent by the UI. Empty keys take the page
// defaults; unknown keys are rejected.
type Keys struct {
	View     string `json:"view" validate:"omitempty,oneof=home-value forecast rent-index"`
	County   string `json:"county"`
	Category string `json:"category"`
	Horizon  string `json:"horizon"`
	Basemap  string `json:"basemap" validate:"omitempty,oneof=dark light streets"`
	Extruded bool   `json:"extruded"`
}

// Context is the complete selection state of one render pass.
type Context struct {
	View     View            `json:"view"`
	County   County          `json:"county"`
	Category HousingCategory `json:"category"`
	Horizon  Horizon         `json:"horizon"`
	Basemap  Basemap         `json:"basemap"`
	Extruded bool            `json:"extruded"`
}

// Default returns the initial selection of a view.
func Default(v View) Context {
	return Context{
		View:     v,
		County:   AllCounties,
		Category: AllSingleFamily,
		Horizon:  TwelveMonths,
		Basemap:  Dark,
	}
}

// Parse builds a Context from UI keys.
func Parse(k Keys) (Context, error) {
	view := HomeValue
	if k.View != "" {
		v, err := ParseView(k.View)
		if err != nil {
			return Context{}, err
		}
		view = v
	}
	ctx := Default(view)

	var err error
	if k.County != "" {
		if ctx.County, err = ParseCounty(k.County); err != nil {
			return Context{}, err
		}
	}
	if k.Category != "" {
		if ctx.Category, err = ParseCategory(k.Category); err != nil {
			return Context{}, err
		}
	}
	if k.Horizon != "" {
		if ctx.Horizon, err = ParseHorizon(k.Horizon); err != nil {
			return Context{}, err
		}
	}
	if k.Basemap != "" {
		if ctx.Basemap, err = ParseBasemap(k.Basemap); err != nil {
			return Context{}, err
		}
	}
	ctx.Extruded = k.Extruded
	return ctx, nil
}

// CacheKey identifies the render output of the context.
func (c Context) CacheKey() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s/%t",
		c.View.Key(), c.County.Key(), c.Category.Key(), c.Horizon.Key(), c.Basemap.Key(), c.Extruded)
}

// Resolution is everything the pipeline needs to know about a selection.
type Resolution struct {
	Title           string                        `json:"title"`
	Subtitle        string                        `json:"subtitle"`
	Dataset         string                        `json:"dataset"`
	Column          string                        `json:"column"`
	Filter          func(model.RegionRecord) bool `json:"-"`
	Viewport        Viewport                      `json:"viewport"`
	MapStyle        string                        `json:"map_style"`
	BoundaryColor   choropleth.Color              `json:"boundary_color"`
	Format          format.Kind                   `json:"format"`
	Ramp            RampSpec                      `json:"ramp"`
	Tooltip         string                        `json:"tooltip"`
	ElevationColumn string                        `json:"elevation_column,omitempty"`
	ElevationScale  float64                       `json:"elevation_scale,omitempty"`
}

// Resolve maps the context to its column, filter and viewport.
func (c Context) Resolve() (Resolution, error) {
	if !c.View.valid() || !c.County.valid() || !c.Category.valid() || !c.Horizon.valid() || !c.Basemap.valid() {
		return Resolution{}, eris.Wrapf(model.ErrConfiguration, "selection: invalid context %+v", c)
	}

	r := Resolution{
		Title:         c.View.Title(),
		Dataset:       c.View.Dataset(),
		Filter:        c.County.Filter(),
		Viewport:      c.County.Viewport(),
		MapStyle:      c.Basemap.Style(),
		BoundaryColor: c.Basemap.LineColor(),
		Format:        c.View.Format(),
		Ramp:          c.View.Ramp(),
		Tooltip:       c.View.Tooltip(),
	}

	switch c.View {
	case HomeValue:
		r.Column = c.Category.Column()
		r.Subtitle = c.Category.Label()
	case Forecast:
		r.Column = c.Horizon.Column()
		r.Subtitle = c.Horizon.Label()
	case RentIndex:
		r.Column = RentColumn
		r.Subtitle = "Typical observed market rent"
	}

	if c.Extruded {
		if c.View != Forecast {
			return Resolution{}, eris.Wrapf(model.ErrConfiguration, "selection: 3D map is not available for %s", c.View.Key())
		}
		r.ElevationColumn = ElevationColumn
		r.ElevationScale = elevationScale
		r.Viewport.Pitch = extrudedPitch
	}

	if c.County != AllCounties {
		r.Subtitle += ", " + c.County.Name()
	}
	return r, nil
}

// Resolve parses a selection key set and resolves it in one step.
func Resolve(k Keys) (Context, Resolution, error) {
	ctx, err := Parse(k)
	if err != nil {
		return Context{}, Resolution{}, err
	}
	res, err := ctx.Resolve()
	if err != nil {
		return Context{}, Resolution{}, err
	}
	return ctx, res, nil
}

// Keys returns the UI keys that parse back to c.
func (c Context) Keys() Keys {
	return Keys{
		View:     c.View.Key(),
		County:   c.County.Key(),
		Category: c.Category.Key(),
		Horizon:  c.Horizon.Key(),
		Basemap:  c.Basemap.Key(),
		Extruded: c.Extruded,
	}
}
