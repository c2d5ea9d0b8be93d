package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/NRDB-Companion/internal/imagecache"
	"github.com/ramonehamilton/NRDB-Companion/internal/output"
	"github.com/ramonehamilton/NRDB-Companion/internal/storage"
)

func newCacheCmd(a *app) *cobra.Command {
	var (
		clearCache bool
		stats      bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached card data and images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if !clearCache && !stats && !refresh {
				fmt.Fprintln(w, "Use --clear to clear the cache, --refresh to re-download card data or --stats to view statistics")
				return nil
			}

			svc, err := a.openCatalog()
			if err != nil {
				return err
			}
			images, err := a.openImages()
			if err != nil {
				return err
			}

			if clearCache || refresh {
				if err := svc.Refresh(ctx); err != nil {
					return err
				}
			}
			if clearCache {
				if err := images.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(w, "Cache cleared successfully")
			}
			if refresh {
				if _, err := a.loadIndex(ctx); err != nil {
					return err
				}
				fmt.Fprintln(w, "Card data refreshed")
			}

			if stats {
				entries, err := a.cache.Stats(ctx)
				if err != nil {
					return err
				}
				displayCacheStats(w, entries, images.GetCacheStats())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearCache, "clear", false, "Clear cached card data and images")
	cmd.Flags().BoolVar(&stats, "stats", false, "Show cache statistics")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-download card data now")
	return cmd
}

func displayCacheStats(w io.Writer, entries []storage.EntryStats, images imagecache.CacheStats) {
	fmt.Fprintln(w, output.StyleHeading.Render("Cache Statistics"))

	tbl := output.NewTable("DATA", "SIZE", "FETCHED", "STATUS")
	for _, e := range entries {
		status := output.StyleSuccess.Render("fresh")
		if !e.Fresh {
			status = output.StyleWarning.Render("stale")
		}
		tbl.Row(e.Kind, formatBytes(e.Bytes), e.FetchedAt.Local().Format("2006-01-02 15:04"), status)
	}
	if tbl.Len() == 0 {
		fmt.Fprintln(w, "  No card data cached")
	} else {
		fmt.Fprintln(w, tbl.String())
	}

	fmt.Fprintf(w, "  Images cached: %d\n", images.TotalFiles)
	fmt.Fprintf(w, "  Image cache size: %s", formatBytes(images.TotalSize))
	if images.MaxSize > 0 {
		fmt.Fprintf(w, " of %s", formatBytes(images.MaxSize))
	}
	fmt.Fprintf(w, "\n  Image directory: %s\n", images.CacheDir)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
