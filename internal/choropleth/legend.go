package choropleth

import (
	"fmt"

	"github.com/arc-research/housing-dashboard/internal/format"
)

// LegendEntry describes one bin of the map legend.
type LegendEntry struct {
	Color Color   `json:"color"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Label string  `json:"label"`
	Count int     `json:"count"`
}

// Legend derives one entry per ramp colour from the classification edges,
// labelled with the same formatter the KPI panel uses. A classification
// without edges (no data) has no legend.
func Legend(c Classification, f format.Formatter) []LegendEntry {
	if len(c.Edges) != len(c.Ramp)+1 {
		return nil
	}
	counts := c.Counts()
	entries := make([]LegendEntry, len(c.Ramp))
	for i, col := range c.Ramp {
		lo, hi := c.Edges[i], c.Edges[i+1]
		entries[i] = LegendEntry{
			Color: col,
			Lower: lo,
			Upper: hi,
			Label: fmt.Sprintf("%s - %s", f(lo), f(hi)),
			Count: counts[i],
		}
	}
	return entries
}
