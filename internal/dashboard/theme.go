package dashboard

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/arc-research/housing-dashboard/internal/choropleth"
	"github.com/arc-research/housing-dashboard/internal/model"
	"github.com/arc-research/housing-dashboard/internal/selection"
)

// Theme overrides the built-in colour ramps per view key.
//
//	ramps:
//	  forecast:
//	    start: "#fff5eb"
//	    end: "#7f2704"
//	    steps: 7
type Theme struct {
	Ramps map[string]selection.RampSpec `yaml:"ramps"`
}

// LoadTheme reads and validates a theme file. An empty path yields the
// built-in theme.
func LoadTheme(path string) (*Theme, error) {
	if path == "" {
		return &Theme{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "theme: read %s", path)
	}
	return ParseTheme(data)
}

// ParseTheme decodes a YAML theme. Unknown view keys and ramps that
// GenerateRamp rejects are configuration errors.
func ParseTheme(data []byte) (*Theme, error) {
	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrapf(model.ErrConfiguration, "theme: decode: %v", err)
	}
	for key, rs := range t.Ramps {
		if _, err := selection.ParseView(key); err != nil {
			return nil, err
		}
		if _, err := choropleth.RampFromHex(rs.Start, rs.End, rs.Steps); err != nil {
			return nil, eris.Wrapf(err, "theme: ramp for %s", key)
		}
	}
	return &t, nil
}

// Ramp returns the colour ramp of a view.
func (t *Theme) Ramp(v selection.View) selection.RampSpec {
	if t != nil {
		if rs, ok := t.Ramps[v.Key()]; ok {
			return rs
		}
	}
	return v.Ramp()
}
