package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/arc-research/housing-dashboard/internal/selection"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print every selectable view, county, category, horizon and basemap",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(selection.Options())
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}
