package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
	"github.com/ramonehamilton/NRDB-Companion/internal/comparison"
	"github.com/ramonehamilton/NRDB-Companion/internal/output"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		detailed bool
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "compare <decklist-url|id|file>",
		Short: "Compare a decklist against your collection",
		Long: `Compare a NetrunnerDB decklist, or a local text decklist, against your
collection and report the cards you are missing, grouped by pack.

With --watch the report is printed again whenever the collection file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, ix, err := a.openCollection(ctx)
			if err != nil {
				return err
			}
			deck, err := resolveDeck(ctx, a, args[0], ix)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			comparer := comparison.NewComparer(nil, ix, m)
			displayComparison(w, comparer.CompareCards(deck), detailed)
			if !watch {
				return nil
			}

			path := a.collectionPath()
			fmt.Fprintf(w, "\n%s\n", output.StyleDim.Render("Watching "+path+" for changes (Ctrl+C to stop)"))

			return collection.Watch(ctx, path, collection.DefaultDebounce,
				func() {
					reloaded, err := collection.Open(path, ix)
					if err != nil {
						output.Warn("Failed to reload collection", "err", err)
						return
					}
					fmt.Fprintf(w, "\n%s\n", output.StyleDim.Render("Collection changed at "+time.Now().Format("15:04:05")))
					displayComparison(w, comparison.NewComparer(nil, ix, reloaded).CompareCards(deck), detailed)
				},
				func(err error) {
					output.Warn("Watch error", "err", err)
				})
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "List every card in the deck, not only missing ones")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run the comparison when the collection file changes")
	return cmd
}
