package choropleth

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// NoBin is the bin index of a value that has no data.
const NoBin = -1

// Assignment is the class of one input value.
type Assignment struct {
	Bin   int    `json:"bin"`
	Color *Color `json:"color"`
}

// Classification is the equal-width binning of one metric column. Values and
// Assignments are aligned 1:1 with the input so colours can be joined back
// by position.
type Classification struct {
	Ramp        []Color      `json:"ramp"`
	Edges       []float64    `json:"edges"`
	Values      []*float64   `json:"-"`
	Assignments []Assignment `json:"assignments"`
}

// Classify assigns each non-null value to one of len(ramp) equal-width bins
// spanning [min, max]. Intervals are closed on the right, the first bin also
// includes min, so a value on an edge belongs to the lower bin. A constant
// column puts every value in bin 0. Nil and non-finite values get NoBin and no
// colour.
func Classify(values []*float64, ramp []Color) (Classification, error) {
	n := len(ramp)
	if n == 0 {
		return Classification{}, eris.Wrap(model.ErrConfiguration, "choropleth: empty colour ramp")
	}

	out := Classification{
		Ramp:        ramp,
		Values:      values,
		Assignments: make([]Assignment, len(values)),
	}

	present := make([]float64, 0, len(values))
	for _, v := range values {
		if usable(v) {
			present = append(present, *v)
		}
	}
	if len(present) == 0 {
		for i := range out.Assignments {
			out.Assignments[i] = Assignment{Bin: NoBin}
		}
		return out, nil
	}

	out.Edges = equalWidthEdges(floats.Min(present), floats.Max(present), n)

	for i, v := range values {
		if !usable(v) {
			out.Assignments[i] = Assignment{Bin: NoBin}
			continue
		}
		bin := binOf(*v, out.Edges)
		c := ramp[bin]
		out.Assignments[i] = Assignment{Bin: bin, Color: &c}
	}
	return out, nil
}

// Counts returns how many values fell into each bin.
func (c Classification) Counts() []int {
	counts := make([]int, len(c.Ramp))
	for _, a := range c.Assignments {
		if a.Bin >= 0 && a.Bin < len(counts) {
			counts[a.Bin]++
		}
	}
	return counts
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// equalWidthEdges returns n+1 boundaries from lo to hi. The last edge is hi
// exactly so accumulated rounding never leaves the maximum outside the top bin.
func equalWidthEdges(lo, hi float64, n int) []float64 {
	edges := make([]float64, n+1)
	if lo == hi {
		for i := range edges {
			edges[i] = lo
		}
		return edges
	}
	width := (hi - lo) / float64(n)
	for i := 0; i < n; i++ {
		if math.IsInf(width, 0) {
			t := float64(i) / float64(n)
			edges[i] = lo*(1-t) + hi*t
			continue
		}
		edges[i] = lo + width*float64(i)
	}
	edges[n] = hi
	return edges
}

// binOf returns the first bin whose upper edge is >= v.
func binOf(v float64, edges []float64) int {
	last := len(edges) - 2
	for i := 0; i < last; i++ {
		if v <= edges[i+1] {
			return i
		}
	}
	return last
}
