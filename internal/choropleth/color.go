// Package choropleth turns a numeric metric column into coloured map layers:
// colour ramps, equal-width classification, legends and layer assembly.
package choropleth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// Color is an opaque RGB colour.
type Color struct {
	R, G, B uint8
}

// ParseHex parses "#RRGGBB" (the leading '#' is optional).
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, eris.Wrapf(model.ErrConfiguration, "choropleth: invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, eris.Wrapf(model.ErrConfiguration, "choropleth: invalid hex colour %q", s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustHex is ParseHex for compile-time constants. It panics on bad input.
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the colour as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA returns the colour as the [r, g, b, a] array deck.gl style renderers expect.
func (c Color) RGBA(alpha uint8) [4]uint8 {
	return [4]uint8{c.R, c.G, c.B, alpha}
}

// MarshalJSON encodes the colour as [r, g, b].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]uint8{c.R, c.G, c.B})
}

// UnmarshalJSON accepts either [r, g, b] or "#rrggbb".
func (c *Color) UnmarshalJSON(data []byte) error {
	var arr [3]uint8
	if err := json.Unmarshal(data, &arr); err == nil {
		*c = Color{R: arr[0], G: arr[1], B: arr[2]}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return eris.Wrap(err, "choropleth: decode colour")
	}
	parsed, err := ParseHex(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
