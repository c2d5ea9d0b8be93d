package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/NRDB-Companion/internal/charts"
	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
	"github.com/ramonehamilton/NRDB-Companion/internal/output"
)

func newPacksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "packs",
		Short: "List all packs grouped by cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openCatalog()
			if err != nil {
				return err
			}
			groups, err := svc.PacksByCycle(cmd.Context())
			if err != nil {
				return err
			}

			owned := make(map[string]bool)
			if path := a.collectionPath(); collection.Exists(path) {
				state, err := collection.Load(path)
				if err != nil {
					return err
				}
				for _, code := range state.Packs() {
					owned[code] = true
				}
			}

			displayPacks(cmd.OutOrStdout(), groups, owned)
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	var (
		chartPath string
		open      bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ix, err := a.requireCollection(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			displayStats(w, m, ix)

			if chartPath == "" {
				return nil
			}
			rows := packCompletions(m.PackSummary(), ix)
			if err := charts.RenderPackCompletion(rows, charts.DefaultChartConfig(), chartPath); err != nil {
				return err
			}
			fmt.Fprintf(w, "\nChart saved to: %s\n", output.StyleNoun.Render(chartPath))

			if open {
				if err := charts.OpenInBrowser(chartPath); err != nil {
					output.Warn("Could not open browser", "err", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chartPath, "chart", "", "Write an HTML pack completion chart to this file")
	cmd.Flags().BoolVar(&open, "open", false, "Open the chart in a browser")
	return cmd
}
