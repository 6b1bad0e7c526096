package selection

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// County restricts the record set to one county of the region, or to none.
type County int

// Counties of the Atlanta Regional Commission planning area.
const (
	AllCounties County = iota
	Cherokee
	Clayton
	Cobb
	DeKalb
	Douglas
	Fayette
	Forsyth
	Fulton
	Gwinnett
	Henry
	Rockdale
)

type countyInfo struct {
	key    string
	name   string
	center [2]float64 // lat, lon
}

var counties = [...]countyInfo{
	AllCounties: {key: "all", name: "All Counties"},
	Cherokee:    {key: "cherokee", name: "Cherokee County", center: [2]float64{34.24, -84.47}},
	Clayton:     {key: "clayton", name: "Clayton County", center: [2]float64{33.54, -84.36}},
	Cobb:        {key: "cobb", name: "Cobb County", center: [2]float64{33.94, -84.58}},
	DeKalb:      {key: "dekalb", name: "DeKalb County", center: [2]float64{33.77, -84.23}},
	Douglas:     {key: "douglas", name: "Douglas County", center: [2]float64{33.70, -84.77}},
	Fayette:     {key: "fayette", name: "Fayette County", center: [2]float64{33.41, -84.49}},
	Forsyth:     {key: "forsyth", name: "Forsyth County", center: [2]float64{34.23, -84.13}},
	Fulton:      {key: "fulton", name: "Fulton County", center: [2]float64{33.79, -84.47}},
	Gwinnett:    {key: "gwinnett", name: "Gwinnett County", center: [2]float64{33.96, -84.02}},
	Henry:       {key: "henry", name: "Henry County", center: [2]float64{33.45, -84.15}},
	Rockdale:    {key: "rockdale", name: "Rockdale County", center: [2]float64{33.65, -84.03}},
}

// Counties lists every county selection, All first.
func Counties() []County {
	out := make([]County, len(counties))
	for i := range counties {
		out[i] = County(i)
	}
	return out
}

// ParseCounty resolves a selection key ("all", "dekalb", ...). The county
// display name ("DeKalb County") is accepted as well.
func ParseCounty(key string) (County, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for i, c := range counties {
		if k == c.key || k == strings.ToLower(c.name) {
			return County(i), nil
		}
	}
	return 0, eris.Wrapf(model.ErrConfiguration, "selection: unknown county %q", key)
}

func (c County) valid() bool { return c >= 0 && int(c) < len(counties) }

// Key returns the selection key.
func (c County) Key() string {
	if !c.valid() {
		return ""
	}
	return counties[c].key
}

// Name returns the county name as it appears in the datasets.
func (c County) Name() string {
	if !c.valid() {
		return ""
	}
	return counties[c].name
}

func (c County) String() string { return c.Key() }

// Filter returns the record predicate for the county. All counties accepts
// every record.
func (c County) Filter() func(model.RegionRecord) bool {
	if c == AllCounties {
		return func(model.RegionRecord) bool { return true }
	}
	name := c.Name()
	return func(r model.RegionRecord) bool { return r.CountyName == name }
}

// Viewport returns the map centre for the county.
func (c County) Viewport() Viewport {
	if c == AllCounties || !c.valid() {
		return DefaultViewport
	}
	info := counties[c]
	return Viewport{Latitude: info.center[0], Longitude: info.center[1], Zoom: countyZoom}
}
