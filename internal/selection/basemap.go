package selection

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/choropleth"
	"github.com/arc-research/housing-dashboard/internal/model"
)

// Basemap is the background map style.
type Basemap int

// Basemaps.
const (
	Dark Basemap = iota
	Light
	Streets
)

var basemaps = [...]struct {
	key, label, style string
	line              choropleth.Color
}{
	Dark:    {"dark", "Dark", "dark", choropleth.Color{R: 255, G: 255, B: 255}},
	Light:   {"light", "Light", "light", choropleth.Color{}},
	Streets: {"streets", "Streets", "road", choropleth.Color{}},
}

// Basemaps lists every basemap.
func Basemaps() []Basemap {
	return []Basemap{Dark, Light, Streets}
}

// ParseBasemap resolves "dark", "light" or "streets".
func ParseBasemap(key string) (Basemap, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for i, b := range basemaps {
		if k == b.key {
			return Basemap(i), nil
		}
	}
	return 0, eris.Wrapf(model.ErrConfiguration, "selection: unknown basemap %q", key)
}

func (b Basemap) valid() bool { return b >= 0 && int(b) < len(basemaps) }

// Key returns the selection key.
func (b Basemap) Key() string {
	if !b.valid() {
		return ""
	}
	return basemaps[b].key
}

// Label returns the display label.
func (b Basemap) Label() string {
	if !b.valid() {
		return ""
	}
	return basemaps[b].label
}

// Style returns the map provider style name.
func (b Basemap) Style() string {
	if !b.valid() {
		return ""
	}
	return basemaps[b].style
}

// LineColor returns the county outline colour that contrasts with the
// basemap: white on dark, black otherwise.
func (b Basemap) LineColor() choropleth.Color {
	if !b.valid() {
		return choropleth.Color{}
	}
	return basemaps[b].line
}

func (b Basemap) String() string { return b.Key() }
