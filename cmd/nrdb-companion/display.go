package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
	"github.com/ramonehamilton/NRDB-Companion/internal/charts"
	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
	"github.com/ramonehamilton/NRDB-Companion/internal/comparison"
	"github.com/ramonehamilton/NRDB-Companion/internal/output"
)

// displayPacks lists packs grouped by cycle, marking owned packs.
func displayPacks(w io.Writer, groups []cards.CycleGroup, owned map[string]bool) {
	for _, group := range groups {
		fmt.Fprintf(w, "\n%s:\n", output.StyleHeading.Render(group.Name))
		for _, pack := range group.Packs {
			mark := " "
			if owned[pack.Code] {
				mark = output.StyleSuccess.Render("✔")
			}
			fmt.Fprintf(w, "  %s %-20s %s\n", mark, pack.Code, pack.Name)
		}
	}
}

// packCompletions converts the pack summary into chart rows sorted by name.
func packCompletions(summary map[string]collection.PackProgress, ix *cards.Index) []charts.PackCompletion {
	rows := make([]charts.PackCompletion, 0, len(summary))
	for code, p := range summary {
		rows = append(rows, charts.PackCompletion{Name: ix.PackName(code), Owned: p.Owned, Total: p.Total})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// displayStats prints collection statistics.
func displayStats(w io.Writer, m *collection.Manager, ix *cards.Index) {
	stats := m.Statistics()

	fmt.Fprintln(w, output.StyleHeading.Render("Collection Statistics"))
	fmt.Fprintf(w, "  Unique cards:  %d\n", stats.UniqueCards)
	fmt.Fprintf(w, "  Total cards:   %d\n", stats.TotalCards)
	fmt.Fprintf(w, "  Missing cards: %d\n", stats.MissingCards)
	fmt.Fprintf(w, "  Owned packs:   %d\n", stats.OwnedPacks)

	if missing := m.State().Missing(); len(missing) > 0 {
		fmt.Fprintf(w, "\n%s\n", output.StyleHeading.Render("Missing cards"))
		codes := sortedKeys(missing)
		for _, code := range codes {
			fmt.Fprintf(w, "  - %dx %s (%s)\n", missing[code], cardTitle(ix, code), code)
		}
	}

	if diffs := m.CardsWithDifferences(); len(diffs) > 0 {
		fmt.Fprintf(w, "\n%s\n", output.StyleHeading.Render("Cards differing from packs"))
		tbl := output.NewTable("CODE", "CARD", "EXPECTED", "ACTUAL", "DIFF")
		for _, code := range sortedKeys(diffs) {
			d := diffs[code]
			tbl.Row(code, cardTitle(ix, code), strconv.Itoa(d.Expected), strconv.Itoa(d.Actual), output.FormatSigned(d.Difference))
		}
		fmt.Fprintln(w, tbl.String())
	}

	rows := packCompletions(m.PackSummary(), ix)
	if len(rows) > 0 {
		fmt.Fprintf(w, "\n%s\n", output.StyleHeading.Render("Cards by pack"))
		tbl := output.NewTable("PACK", "OWNED", "COMPLETION", "")
		for _, r := range rows {
			tbl.Row(r.Name,
				fmt.Sprintf("%d/%d", r.Owned, r.Total),
				output.FormatPercentage(r.Percentage()),
				output.ProgressBar(r.Owned, r.Total, 20))
		}
		fmt.Fprintln(w, tbl.String())
	}
}

// displayComparison prints a comparison report. With detailed every
// requirement is listed, not only the missing ones.
func displayComparison(w io.Writer, result *comparison.Result, detailed bool) {
	fmt.Fprint(w, comparison.FormatReport(result))
	if !detailed {
		return
	}

	fmt.Fprintf(w, "\n%s\n", output.StyleHeading.Render("All cards"))
	tbl := output.NewTable("CODE", "CARD", "PACK", "REQUIRED", "OWNED", "MISSING")
	for _, req := range result.Requirements {
		missing := strconv.Itoa(req.Missing)
		if req.Missing > 0 {
			missing = output.StyleMissing.Render(missing)
		}
		tbl.Row(req.Code, req.DisplayName(), req.PackName, strconv.Itoa(req.Required), strconv.Itoa(req.Owned), missing)
	}
	fmt.Fprintln(w, tbl.String())
}

func cardTitle(ix *cards.Index, code string) string {
	if ix != nil {
		if card, ok := ix.Card(code); ok {
			return card.Title
		}
	}
	return code
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
