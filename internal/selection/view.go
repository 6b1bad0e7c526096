package selection

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/format"
	"github.com/arc-research/housing-dashboard/internal/model"
)

// View is one dashboard page backed by its own dataset.
type View int

// Views.
const (
	HomeValue View = iota
	Forecast
	RentIndex
)

// RampSpec describes a colour ramp by its endpoints.
type RampSpec struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Steps int    `json:"steps" yaml:"steps"`
}

type viewInfo struct {
	key     string
	title   string
	dataset string
	tooltip string
	format  format.Kind
	ramp    RampSpec
}

var views = [...]viewInfo{
	HomeValue: {
		key:     "home-value",
		title:   "Metro Atlanta Home Values",
		dataset: "home_values",
		tooltip: "Home value index",
		format:  format.KindCurrency,
		ramp:    RampSpec{Start: "#D7E2FF", End: "#2191FB", Steps: 5},
	},
	Forecast: {
		key:     "forecast",
		title:   "Metro Atlanta Home Value Forecasts",
		dataset: "forecasts",
		tooltip: "Forecasted change in home value",
		format:  format.KindPercent,
		ramp:    RampSpec{Start: "#e5f5e0", End: "#005a32", Steps: 6},
	},
	RentIndex: {
		key:     "rent-index",
		title:   "Metro Atlanta Rent Index",
		dataset: "rent_index",
		tooltip: "Rent index",
		format:  format.KindCurrency,
		ramp:    RampSpec{Start: "#FFE8D6", End: "#FF7F11", Steps: 5},
	},
}

// Rent index and forecast elevation columns.
const (
	RentColumn      = "zori"
	ElevationColumn = "home_value_index"
	elevationScale  = 0.1
	extrudedPitch   = 45
)

// Views lists every dashboard view.
func Views() []View {
	return []View{HomeValue, Forecast, RentIndex}
}

// ParseView resolves "home-value", "forecast" or "rent-index".
func ParseView(key string) (View, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for i, v := range views {
		if k == v.key {
			return View(i), nil
		}
	}
	return 0, eris.Wrapf(model.ErrConfiguration, "selection: unknown view %q", key)
}

func (v View) valid() bool { return v >= 0 && int(v) < len(views) }

// Key returns the selection key.
func (v View) Key() string {
	if !v.valid() {
		return ""
	}
	return views[v].key
}

// Title returns the page title.
func (v View) Title() string {
	if !v.valid() {
		return ""
	}
	return views[v].title
}

// Dataset returns the name of the dataset the view reads.
func (v View) Dataset() string {
	if !v.valid() {
		return ""
	}
	return views[v].dataset
}

// Format returns how the view displays metric values.
func (v View) Format() format.Kind {
	if !v.valid() {
		return format.KindPlain
	}
	return views[v].format
}

// Ramp returns the default colour ramp of the view.
func (v View) Ramp() RampSpec {
	if !v.valid() {
		return RampSpec{}
	}
	return views[v].ramp
}

// Tooltip returns the tooltip HTML template. Placeholders are feature
// property names.
func (v View) Tooltip() string {
	if !v.valid() {
		return ""
	}
	return views[v].tooltip + ": <b>{value_formatted}</b><hr>ZIP: {region_id}<br>As part of: {county_name}"
}

func (v View) String() string { return v.Key() }
