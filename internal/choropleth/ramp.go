package choropleth

import (
	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// GenerateRamp returns steps colours evenly spaced from start to end, both
// endpoints included. Each channel is interpolated linearly and truncated
// toward zero.
func GenerateRamp(start, end Color, steps int) ([]Color, error) {
	if steps < 2 {
		return nil, eris.Wrapf(model.ErrConfiguration, "choropleth: ramp needs at least 2 steps, got %d", steps)
	}

	ramp := make([]Color, steps)
	last := steps - 1
	for i := range ramp {
		ramp[i] = Color{
			R: lerp(start.R, end.R, i, last),
			G: lerp(start.G, end.G, i, last),
			B: lerp(start.B, end.B, i, last),
		}
	}
	return ramp, nil
}

// lerp interpolates one channel. The conversion truncates the interpolated
// value, not the delta, so falling ramps land on the same integers as rising ones.
func lerp(a, b uint8, i, n int) uint8 {
	v := float64(a) + float64(int(b)-int(a))*float64(i)/float64(n)
	return uint8(v)
}

// RampFromHex is GenerateRamp over two "#RRGGBB" endpoints.
func RampFromHex(start, end string, steps int) ([]Color, error) {
	s, err := ParseHex(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseHex(end)
	if err != nil {
		return nil, err
	}
	return GenerateRamp(s, e, steps)
}
