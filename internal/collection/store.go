package collection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Extension is the only collection file extension Load and Save accept.
const Extension = ".toml"

// document is the canonical on-disk shape of a collection.
type document struct {
	Packs   []string       `toml:"packs"`
	Cards   map[string]int `toml:"cards"`
	Diffs   map[string]int `toml:"diffs,omitempty"`
	Missing map[string]int `toml:"missing"`
}

// Load reads a collection document from path.
//
// Validation is completed before a State is built, so a document with any
// negative count yields an error and no partial state.
func Load(path string) (*State, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}

	return Decode(data, path)
}

// Decode parses a collection document. path is used for error messages only.
func Decode(data []byte, path string) (*State, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var doc document
	var err error

	if doc.Packs, err = decodePacks(raw["packs"], path); err != nil {
		return nil, err
	}

	switch cards := raw["cards"].(type) {
	case nil:
	case []any:
		if doc.Cards, err = decodeLegacyCards(cards, path); err != nil {
			return nil, err
		}
	case map[string]any:
		if doc.Cards, err = decodeCounts(cards, "cards", path, false); err != nil {
			return nil, err
		}
	default:
		return nil, &FormatError{Path: path, Reason: "cards must be a table of counts or a list of {code, count} records"}
	}

	if doc.Diffs, err = decodeTable(raw["diffs"], "diffs", path, true); err != nil {
		return nil, err
	}
	if doc.Missing, err = decodeTable(raw["missing"], "missing", path, false); err != nil {
		return nil, err
	}

	return doc.state(), nil
}

// Save writes state to path in the canonical document shape. Parent
// directories are created as needed and the file is replaced atomically.
func Save(state *State, path string) error {
	if err := checkExtension(path); err != nil {
		return err
	}

	data, err := Encode(state)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create collection directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".collection-*"+Extension)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace collection file: %w", err)
	}

	return nil
}

// Encode renders state as a canonical TOML document.
func Encode(state *State) ([]byte, error) {
	doc := document{
		Packs:   state.Packs(),
		Cards:   state.Overrides(),
		Diffs:   state.Diffs(),
		Missing: state.Missing(),
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection: %w", err)
	}
	return data, nil
}

func (d document) state() *State {
	s := NewState()
	for _, code := range d.Packs {
		s.addPack(code)
	}
	for code, n := range d.Diffs {
		s.putEntry(code, Entry{Kind: Diff, Value: n})
	}
	// Overrides are applied last so they win over a diff for the same card.
	for code, n := range d.Cards {
		if n > 0 {
			s.putEntry(code, Entry{Kind: Override, Value: n})
		}
	}
	for code, n := range d.Missing {
		s.putMissing(code, n)
	}
	return s
}

func checkExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != Extension {
		if ext == "" {
			ext = "no extension"
		}
		return &FormatError{Path: path, Reason: fmt.Sprintf("%s (expected %s)", ext, Extension)}
	}
	return nil
}

func decodePacks(v any, path string) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &FormatError{Path: path, Reason: "packs must be a list of pack codes"}
	}

	packs := make([]string, 0, len(list))
	for _, item := range list {
		code, ok := item.(string)
		if !ok {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("pack code %v is not a string", item)}
		}
		code = strings.TrimSpace(code)
		if code != "" {
			packs = append(packs, code)
		}
	}
	sort.Strings(packs)
	return packs, nil
}

func decodeTable(v any, field, path string, signed bool) (map[string]int, error) {
	if v == nil {
		return nil, nil
	}
	table, ok := v.(map[string]any)
	if !ok {
		return nil, &FormatError{Path: path, Reason: field + " must be a table of card counts"}
	}
	return decodeCounts(table, field, path, signed)
}

func decodeCounts(table map[string]any, field, path string, signed bool) (map[string]int, error) {
	out := make(map[string]int, len(table))
	for code, v := range table {
		n, err := toCount(v, field, code, path)
		if err != nil {
			return nil, err
		}
		if n < 0 && !signed {
			return nil, negativeQuantity(code, field, n)
		}
		if n != 0 {
			out[code] = n
		}
	}
	return out, nil
}

func decodeLegacyCards(records []any, path string) (map[string]int, error) {
	out := make(map[string]int, len(records))
	for i, rec := range records {
		fields, ok := rec.(map[string]any)
		if !ok {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("cards[%d] is not a {code, count} record", i)}
		}
		code, ok := fields["code"].(string)
		if !ok || code == "" {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("cards[%d] has no code", i)}
		}
		n, err := toCount(fields["count"], "cards", code, path)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, negativeQuantity(code, "cards", n)
		}
		if n > 0 {
			out[code] += n
		}
	}
	return out, nil
}

func toCount(v any, field, code, path string) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case nil:
		return 0, &FormatError{Path: path, Reason: fmt.Sprintf("%s.%s has no count", field, code)}
	default:
		return 0, &FormatError{Path: path, Reason: fmt.Sprintf("%s.%s must be an integer, got %T", field, code, v)}
	}
}

// Exists reports whether a collection file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// Template is the commented example document written by init.
const Template = `# NRDB Companion collection file.
#
# packs:   pack codes you own; every card in them counts at its per-pack quantity.
# cards:   absolute counts that replace the pack-derived count.
# diffs:   signed adjustments on top of the pack-derived count.
# missing: copies you own but cannot currently use (lost, damaged, sleeved elsewhere).

packs = ["core", "wla"]

[cards]
"01001" = 3

[diffs]
"01002" = -1

[missing]
"01003" = 1
`
