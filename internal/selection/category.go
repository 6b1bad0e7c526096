package selection

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// HousingCategory selects the home value series by bedroom count.
type HousingCategory int

// Housing categories.
const (
	AllSingleFamily HousingCategory = iota
	OneBedroom
	TwoBedroom
	ThreeBedroom
	FourBedroom
	FivePlusBedroom
)

var categories = [...]struct {
	key, label, column string
}{
	AllSingleFamily: {"all", "All Single-Family Homes", "all_BR"},
	OneBedroom:      {"1br", "1-Bedroom Homes", "1_BR"},
	TwoBedroom:      {"2br", "2-Bedroom Homes", "2_BR"},
	ThreeBedroom:    {"3br", "3-Bedroom Homes", "3_BR"},
	FourBedroom:     {"4br", "4-Bedroom Homes", "4_BR"},
	FivePlusBedroom: {"5br", "5+Bedroom Homes", "5+BR"},
}

// Categories lists every housing category.
func Categories() []HousingCategory {
	out := make([]HousingCategory, len(categories))
	for i := range categories {
		out[i] = HousingCategory(i)
	}
	return out
}

// ParseCategory resolves a selection key ("all", "1br" ... "5br") or a label.
func ParseCategory(key string) (HousingCategory, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for i, c := range categories {
		if k == c.key || k == strings.ToLower(c.label) {
			return HousingCategory(i), nil
		}
	}
	return 0, eris.Wrapf(model.ErrConfiguration, "selection: unknown housing category %q", key)
}

func (h HousingCategory) valid() bool { return h >= 0 && int(h) < len(categories) }

// Key returns the selection key.
func (h HousingCategory) Key() string {
	if !h.valid() {
		return ""
	}
	return categories[h].key
}

// Label returns the display label.
func (h HousingCategory) Label() string {
	if !h.valid() {
		return ""
	}
	return categories[h].label
}

// Column returns the home value dataset column backing the category.
func (h HousingCategory) Column() string {
	if !h.valid() {
		return ""
	}
	return categories[h].column
}

func (h HousingCategory) String() string { return h.Key() }
