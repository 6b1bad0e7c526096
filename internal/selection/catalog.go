package selection

// Option is one selectable value and its display label.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ViewOption describes a page and the controls it shows.
type ViewOption struct {
	Option
	Controls  []string `json:"controls"`
	Extrusion bool     `json:"extrusion"`
}

// Catalog lists every option the UI may offer.
type Catalog struct {
	Views      []ViewOption `json:"views"`
	Counties   []Option     `json:"counties"`
	Categories []Option     `json:"categories"`
	Horizons   []Option     `json:"horizons"`
	Basemaps   []Option     `json:"basemaps"`
	Defaults   Keys         `json:"defaults"`
}

// Options returns the catalog of selectable values.
func Options() Catalog {
	c := Catalog{Defaults: Default(HomeValue).Keys()}
	for _, v := range Views() {
		vo := ViewOption{Option: Option{Key: v.Key(), Label: v.Title()}, Controls: []string{"county", "basemap"}}
		switch v {
		case HomeValue:
			vo.Controls = append(vo.Controls, "category")
		case Forecast:
			vo.Controls = append(vo.Controls, "horizon")
			vo.Extrusion = true
		}
		c.Views = append(c.Views, vo)
	}
	for _, x := range Counties() {
		c.Counties = append(c.Counties, Option{Key: x.Key(), Label: x.Name()})
	}
	for _, x := range Categories() {
		c.Categories = append(c.Categories, Option{Key: x.Key(), Label: x.Label()})
	}
	for _, x := range Horizons() {
		c.Horizons = append(c.Horizons, Option{Key: x.Key(), Label: x.Label()})
	}
	for _, x := range Basemaps() {
		c.Basemaps = append(c.Basemaps, Option{Key: x.Key(), Label: x.Label()})
	}
	return c
}
