package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arc-research/housing-dashboard/internal/dashboard"
	"github.com/arc-research/housing-dashboard/internal/dataset"
	"github.com/arc-research/housing-dashboard/internal/selection"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load every dataset, check integrity and render each default view",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initDashboard(cmd.Context(), cfg, "validate", false)
		if err != nil {
			return err
		}
		defer env.Close()

		return validateAll(cmd.Context(), cmd.OutOrStdout(), env.Registry, env.Renderer)
	},
}

// validateAll prints a dataset inventory and renders the default selection
// of every view. It returns the first render error.
func validateAll(ctx context.Context, w io.Writer, reg *dataset.Registry, r *dashboard.Renderer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tRECORDS\tCOLUMNS")
	for _, name := range reg.Names() {
		ds, err := reg.Dataset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\n", name, len(ds.Records), len(ds.Columns))
	}
	fmt.Fprintf(tw, "boundaries\t%d\t-\n", len(reg.Boundaries()))
	fmt.Fprintf(tw, "history\t%d\t-\n", len(reg.History()))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	for _, v := range selection.Views() {
		view, err := r.Render(ctx, selection.Default(v))
		if err != nil {
			fmt.Fprintf(w, "%-12s FAIL %v\n", v.Key(), err)
			return err
		}
		if view.NoData {
			fmt.Fprintf(w, "%-12s ok   (no data)\n", v.Key())
			continue
		}
		fmt.Fprintf(w, "%-12s ok   %d regions, median %s\n", v.Key(), view.KPIs.Count, view.KPIs.Median.Formatted)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
