package selection

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// Horizon is a forecast outlook.
type Horizon int

// Forecast horizons.
const (
	OneMonth Horizon = iota
	ThreeMonths
	TwelveMonths
)

var horizons = [...]struct {
	key, label, column string
	months             int
}{
	OneMonth:     {"1m", "1-month outlook", "1month_forecast", 1},
	ThreeMonths:  {"3m", "3-month outlook", "3month_forecast", 3},
	TwelveMonths: {"12m", "12-month outlook", "12month_forecast", 12},
}

// Horizons lists every forecast horizon.
func Horizons() []Horizon {
	return []Horizon{OneMonth, ThreeMonths, TwelveMonths}
}

// ParseHorizon resolves "1m", "3m", "12m", a bare month count or a label.
func ParseHorizon(key string) (Horizon, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for i, h := range horizons {
		if k == h.key || k == strings.TrimSuffix(h.key, "m") || k == strings.ToLower(h.label) {
			return Horizon(i), nil
		}
	}
	return 0, eris.Wrapf(model.ErrConfiguration, "selection: unknown forecast horizon %q", key)
}

func (h Horizon) valid() bool { return h >= 0 && int(h) < len(horizons) }

// Key returns the selection key.
func (h Horizon) Key() string {
	if !h.valid() {
		return ""
	}
	return horizons[h].key
}

// Label returns the display label.
func (h Horizon) Label() string {
	if !h.valid() {
		return ""
	}
	return horizons[h].label
}

// Column returns the forecast dataset column for the horizon.
func (h Horizon) Column() string {
	if !h.valid() {
		return ""
	}
	return horizons[h].column
}

// Months returns the horizon length.
func (h Horizon) Months() int {
	if !h.valid() {
		return 0
	}
	return horizons[h].months
}

func (h Horizon) String() string { return h.Key() }
