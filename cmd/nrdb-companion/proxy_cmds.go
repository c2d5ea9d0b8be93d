package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
	"github.com/ramonehamilton/NRDB-Companion/internal/output"
	"github.com/ramonehamilton/NRDB-Companion/internal/proxy"
)

func addPDFFlags(cmd *cobra.Command, f *pdfFlags) {
	cmd.Flags().StringVar(&f.pageSize, "page-size", "", "Page size: letter, a4 or legal (default from config)")
	cmd.Flags().BoolVar(&f.noImages, "no-images", false, "Print text placeholders instead of card images")
	cmd.Flags().BoolVar(&f.groupByPack, "group-by-pack", false, "Order proxies by pack and title")
}

func newProxyCmd(a *app) *cobra.Command {
	var (
		outputFlag string
		all        bool
		flags      pdfFlags
	)

	cmd := &cobra.Command{
		Use:   "proxy <decklist-url|id|file>",
		Short: "Generate a proxy PDF for the cards a deck is missing",
		Long: `Generate a printable PDF of proxy cards for a decklist.

By default only missing copies are printed and the file is written to
decks/<corporation|runner>/<decklist-id>/<deck-name>.pdf.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, ix, err := a.openCollection(ctx)
			if err != nil {
				return err
			}

			path, err := generateDeckProxies(ctx, a, m, ix, args[0], outputFlag, all, &flags)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if path == "" {
				fmt.Fprintln(w, output.StyleSuccess.Render("You have all cards for this deck. No proxies needed."))
				return nil
			}
			fmt.Fprintf(w, "PDF saved to: %s\n", output.StyleNoun.Render(path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output PDF file or directory")
	cmd.Flags().BoolVar(&all, "all", false, "Print every card in the deck, not only missing ones")
	addPDFFlags(cmd, &flags)
	return cmd
}

// generateDeckProxies compares a deck and writes its proxy sheet. It
// returns an empty path when nothing needs printing.
func generateDeckProxies(ctx context.Context, a *app, m *collection.Manager, ix *cards.Index, input, outputFlag string, all bool, flags *pdfFlags) (string, error) {
	result, err := compareDeck(ctx, a, m, ix, input)
	if err != nil {
		return "", err
	}

	list := proxy.Select(result)
	if all {
		list = proxy.All(result)
	}
	if proxy.TotalCopies(list) == 0 {
		return "", nil
	}

	path := deckOutputPath(result, outputFlag, a.cfg.PDF.OutputDir)
	output.Info("Generating proxies", "deck", result.DecklistName, "cards", proxy.TotalCopies(list))
	if err := writeProxies(ctx, a, list, path, flags); err != nil {
		return "", err
	}
	return path, nil
}

func newProxyPackCmd(a *app) *cobra.Command {
	var (
		outputFlag string
		flags      pdfFlags
	)

	cmd := &cobra.Command{
		Use:   "proxy-pack <pack-code>",
		Short: "Generate a proxy PDF for the cards of a pack you do not own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, ix, err := a.openCollection(ctx)
			if err != nil {
				return err
			}
			pack, err := lookupPack(ctx, a, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			list := proxy.ForPack(pack.Code, ix, m)
			if len(list) == 0 {
				fmt.Fprintf(w, "You own every card from %s.\n", pack.Name)
				return nil
			}

			path := outputFlag
			if path == "" {
				path = filepath.Join(a.cfg.PDF.OutputDir, "packs", pack.Code+".pdf")
			}
			if err := writeProxies(ctx, a, list, path, &flags); err != nil {
				return err
			}

			fmt.Fprintf(w, "Generated %d proxies from %s\n", proxy.TotalCopies(list), pack.Name)
			fmt.Fprintf(w, "PDF saved to: %s\n", output.StyleNoun.Render(path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output PDF file (default decks/packs/<code>.pdf)")
	addPDFFlags(cmd, &flags)
	return cmd
}
