package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
	"github.com/ramonehamilton/NRDB-Companion/internal/comparison"
	"github.com/ramonehamilton/NRDB-Companion/internal/deckimport"
	"github.com/ramonehamilton/NRDB-Companion/internal/output"
	"github.com/ramonehamilton/NRDB-Companion/internal/pdf"
	"github.com/ramonehamilton/NRDB-Companion/internal/proxy"
)

// resolveDeck loads a decklist from a local text file, a NetrunnerDB URL or
// a bare decklist ID.
func resolveDeck(ctx context.Context, a *app, input string, ix *cards.Index) (*cards.Decklist, error) {
	if info, err := os.Stat(input); err == nil && info.Mode().IsRegular() {
		result, err := deckimport.NewParser(ix).ParseFile(input)
		for _, warning := range resultWarnings(result) {
			output.Warn(warning)
		}
		if err != nil {
			return nil, NewExitError(fmt.Errorf("%s: %w", input, err), ExitParseError)
		}
		return result.Deck, nil
	}

	id, ok := deckimport.ExtractDecklistID(input)
	if !ok {
		return nil, NewExitError(fmt.Errorf(`invalid decklist URL: %s
expected formats:
  - https://netrunnerdb.com/en/decklist/<id>/deck-name
  - https://netrunnerdb.com/decklist/view/<id>
  - a local text decklist file`, input), ExitValidationError)
	}

	svc, err := a.openCatalog()
	if err != nil {
		return nil, err
	}
	output.Info("Fetching decklist", "id", id)
	return svc.Decklist(ctx, id)
}

func resultWarnings(result *deckimport.ParseResult) []string {
	if result == nil {
		return nil
	}
	return result.Warnings
}

// compareDeck resolves input and compares it against the collection.
func compareDeck(ctx context.Context, a *app, m *collection.Manager, ix *cards.Index, input string) (*comparison.Result, error) {
	deck, err := resolveDeck(ctx, a, input, ix)
	if err != nil {
		return nil, err
	}
	result := comparison.NewComparer(nil, ix, m).CompareCards(deck)
	return result, nil
}

// deckOutputPath picks where a deck's proxy sheet is written. Without an
// explicit output the layout is <dir>/<corporation|runner>/<id>/<slug>.pdf.
// An output that is a directory, or has no extension, gets a
// <faction>_<name>.pdf file inside it.
func deckOutputPath(result *comparison.Result, outputFlag, outputDir string) string {
	if outputFlag == "" {
		side := "runner"
		if result.Side() == cards.SideCorp {
			side = "corporation"
		}
		id := result.DecklistID
		if id == "" {
			id = deckimport.Slug(result.DecklistName)
		}
		return filepath.Join(outputDir, side, deckimport.SanitizeFilename(id), deckimport.Slug(result.DecklistName)+".pdf")
	}

	if info, err := os.Stat(outputFlag); (err != nil || !info.IsDir()) && filepath.Ext(outputFlag) != "" {
		return outputFlag
	}

	name := fmt.Sprintf("%s_%s.pdf",
		cards.FactionShortName(result.IdentityFaction()),
		deckimport.SanitizeFilename(result.DecklistName))
	return filepath.Join(outputFlag, name)
}

// pdfFlags are the proxy sheet options shared by proxy, proxy-pack and batch.
type pdfFlags struct {
	pageSize    string
	noImages    bool
	groupByPack bool
}

func (f *pdfFlags) options(a *app) (pdf.Options, error) {
	size := a.cfg.PDF.PageSize
	if f.pageSize != "" {
		size = f.pageSize
	}
	pageSize, err := pdf.ParsePageSize(size)
	if err != nil {
		return pdf.Options{}, NewExitError(err, ExitValidationError)
	}

	opts := pdf.DefaultOptions()
	opts.PageSize = pageSize
	opts.DownloadImages = a.cfg.PDF.DownloadImages && !f.noImages
	opts.GroupByPack = a.cfg.PDF.GroupByPack || f.groupByPack
	opts.Logger = output.Logger
	return opts, nil
}

// writeProxies renders list to path.
func writeProxies(ctx context.Context, a *app, list []proxy.Card, path string, flags *pdfFlags) error {
	opts, err := flags.options(a)
	if err != nil {
		return err
	}

	var images pdf.ImageSource
	if opts.DownloadImages {
		cache, err := a.openImages()
		if err != nil {
			return err
		}
		images = cache
	}

	gen, err := pdf.NewGenerator(images, opts)
	if err != nil {
		return err
	}

	return output.RunWithSpinner(ctx, func(ctx context.Context) error {
		return gen.GenerateFile(ctx, list, path)
	}, output.WithTitle(fmt.Sprintf("Generating %d proxy cards...", proxy.TotalCopies(list))))
}
