package cards

import "sort"

// SortByRelease returns a copy of packs ordered by release date. Packs
// without a release date always sort last, in either direction.
func SortByRelease(packs []Pack, newestFirst bool) []Pack {
	out := make([]Pack, 0, len(packs))
	for _, p := range packs {
		if p.Code == "" || p.Name == "" {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DateRelease, out[j].DateRelease
		if newestFirst {
			if a == "" {
				a = "0000"
			}
			if b == "" {
				b = "0000"
			}
			return a > b
		}
		if a == "" {
			a = "9999"
		}
		if b == "" {
			b = "9999"
		}
		return a < b
	})

	return out
}

// CycleGroup is a cycle and the packs released in it.
type CycleGroup struct {
	Code  string
	Name  string
	Packs []Pack
}

// GroupByCycle groups packs by cycle. Cycles are ordered by their most
// recent release, newest first, and packs inside a cycle follow the same
// order. names maps cycle codes to display names and may be nil.
func GroupByCycle(packs []Pack, names map[string]string) []CycleGroup {
	const noDate = "1900-01-01"

	byCycle := make(map[string][]Pack)
	var order []string
	for _, p := range packs {
		code := p.CycleCode
		if code == "" {
			code = "other"
		}
		if _, ok := byCycle[code]; !ok {
			order = append(order, code)
		}
		byCycle[code] = append(byCycle[code], p)
	}

	date := func(p Pack) string {
		if p.DateRelease == "" {
			return noDate
		}
		return p.DateRelease
	}

	latest := make(map[string]string, len(order))
	for _, code := range order {
		newest := noDate
		for _, p := range byCycle[code] {
			if d := date(p); d > newest {
				newest = d
			}
		}
		latest[code] = newest
	}

	sort.SliceStable(order, func(i, j int) bool {
		return latest[order[i]] > latest[order[j]]
	})

	groups := make([]CycleGroup, 0, len(order))
	for _, code := range order {
		list := byCycle[code]
		sort.SliceStable(list, func(i, j int) bool { return date(list[i]) > date(list[j]) })

		name := names[code]
		if name == "" {
			name = list[0].Cycle
		}
		if name == "" {
			name = code
		}
		groups = append(groups, CycleGroup{Code: code, Name: name, Packs: list})
	}

	return groups
}

// NewestRelease returns the most recent release date among packs, or "" if
// none has a date.
func NewestRelease(packs []Pack) string {
	newest := ""
	for _, p := range packs {
		if p.DateRelease > newest {
			newest = p.DateRelease
		}
	}
	return newest
}
