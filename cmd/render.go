package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/arc-research/housing-dashboard/internal/dashboard"
	"github.com/arc-research/housing-dashboard/internal/selection"
)

var (
	renderKeys selection.Keys
	renderOut  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one dashboard view to JSON",
	Example: `  housing-dashboard render --view forecast --horizon 3m --county cobb
  housing-dashboard render --view forecast --extruded --out forecast.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initDashboard(cmd.Context(), cfg, "render", false)
		if err != nil {
			return err
		}
		defer env.Close()

		out := cmd.OutOrStdout()
		if renderOut != "" {
			f, err := os.Create(renderOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", renderOut)
			}
			defer func() { _ = f.Close() }()
			out = f
		}
		return renderTo(cmd.Context(), out, env.Renderer, renderKeys)
	},
}

// renderTo renders the selection named by keys and writes indented JSON.
func renderTo(ctx context.Context, w io.Writer, r *dashboard.Renderer, keys selection.Keys) error {
	sel, err := selection.Parse(keys)
	if err != nil {
		return err
	}
	data, err := r.RenderJSON(ctx, sel)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return eris.Wrap(err, "indent view")
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return eris.Wrap(err, "write view")
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderKeys.View, "view", "home-value", "view: home-value, forecast or rent-index")
	f.StringVar(&renderKeys.County, "county", "", "county key or name (default all)")
	f.StringVar(&renderKeys.Category, "category", "", "housing category: all, 1br .. 5br")
	f.StringVar(&renderKeys.Horizon, "horizon", "", "forecast horizon: 1m, 3m or 12m")
	f.StringVar(&renderKeys.Basemap, "basemap", "", "basemap: dark, light or streets")
	f.BoolVar(&renderKeys.Extruded, "extruded", false, "3D extrusion (forecast view only)")
	f.StringVarP(&renderOut, "out", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}
