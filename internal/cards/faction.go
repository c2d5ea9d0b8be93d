package cards

// Side names used for output directories.
const (
	SideCorp   = "corp"
	SideRunner = "runner"
)

var corpFactions = map[string]bool{
	"haas-bioroid":       true,
	"jinteki":            true,
	"nbn":                true,
	"weyland-consortium": true,
	"neutral-corp":       true,
}

var factionShortNames = map[string]string{
	"haas-bioroid":       "hb",
	"jinteki":            "jinteki",
	"nbn":                "nbn",
	"weyland-consortium": "weyland",
	"neutral-corp":       "neutral",
	"anarch":             "anarch",
	"criminal":           "criminal",
	"shaper":             "shaper",
	"adam":               "adam",
	"apex":               "apex",
	"sunny-lebeau":       "sunny",
	"neutral-runner":     "neutral",
}

// FactionSide returns the side a faction plays on. Unknown factions are
// treated as runner factions.
func FactionSide(faction string) string {
	if corpFactions[faction] {
		return SideCorp
	}
	return SideRunner
}

// FactionShortName returns a compact faction name suitable for filenames.
func FactionShortName(faction string) string {
	if short, ok := factionShortNames[faction]; ok {
		return short
	}
	if faction == "" {
		return "unknown"
	}
	return faction
}
