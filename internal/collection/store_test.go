package collection

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestLoadDocument(t *testing.T) {
	path := writeFile(t, "collection.toml", `
packs = ["wla", "core"]

[cards]
"01001" = 2
"01005" = 0

[diffs]
"01002" = -1

[missing]
"01003" = 1
`)

	state, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := state.Packs(); !reflect.DeepEqual(got, []string{"core", "wla"}) {
		t.Errorf("Packs() = %v", got)
	}
	if got := state.Overrides(); !reflect.DeepEqual(got, map[string]int{"01001": 2}) {
		t.Errorf("Overrides() = %v, zero entries should be dropped", got)
	}
	if got := state.Diffs(); !reflect.DeepEqual(got, map[string]int{"01002": -1}) {
		t.Errorf("Diffs() = %v", got)
	}
	if got := state.Missing(); !reflect.DeepEqual(got, map[string]int{"01003": 1}) {
		t.Errorf("Missing() = %v", got)
	}
}

func TestLoadLegacyRecords(t *testing.T) {
	path := writeFile(t, "legacy.toml", `
[[cards]]
code = "01001"
count = 3

[[cards]]
code = "01002"
count = 1
`)

	state, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := map[string]int{"01001": 3, "01002": 1}
	if got := state.Overrides(); !reflect.DeepEqual(got, want) {
		t.Errorf("Overrides() = %v, want %v", got, want)
	}
	if len(state.Packs()) != 0 || len(state.Missing()) != 0 {
		t.Error("legacy document should have no packs or missing cards")
	}
}

func TestLoadOverrideWinsOverDiff(t *testing.T) {
	state, err := Decode([]byte(`
packs = ["core"]

[cards]
"01001" = 2

[diffs]
"01001" = -1
"01002" = 1
`), "both.toml")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	e, ok := state.Entry("01001")
	if !ok || e.Kind != Override || e.Value != 2 {
		t.Errorf("Entry(01001) = %+v, %v; want override 2", e, ok)
	}
	if _, ok := state.Diffs()["01001"]; ok {
		t.Error("diff for an overridden card should be dropped")
	}

	m := NewManagerWithState(state, testIndex(), "")
	if got := m.ActualCount("01001"); got != 2 {
		t.Errorf("ActualCount(01001) = %d, want 2", got)
	}
	if got := m.ActualCount("01002"); got != 4 {
		t.Errorf("ActualCount(01002) = %d, want 4", got)
	}
}

func TestLoadNegativeCountIsAtomic(t *testing.T) {
	docs := map[string]string{
		"cards":   "packs = [\"core\"]\n[cards]\n\"01001\" = 2\n\"01002\" = -1\n",
		"missing": "[missing]\n\"01001\" = -3\n",
		"legacy":  "[[cards]]\ncode = \"01001\"\ncount = 1\n[[cards]]\ncode = \"01002\"\ncount = -1\n",
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			state, err := Decode([]byte(doc), name+".toml")
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Decode() error = %v, want ErrValidation", err)
			}
			if state != nil {
				t.Error("no state should be returned on validation failure")
			}
		})
	}
}

func TestLoadNegativeCountLeavesManagerUntouched(t *testing.T) {
	path := writeFile(t, "bad.toml", "[cards]\n\"01001\" = -1\n")

	m, err := Open(path, testIndex())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Open() error = %v, want ErrValidation", err)
	}
	if m != nil {
		t.Error("Open() should not return a manager on failure")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"bad extension", "collection.yaml", "packs: []", ErrFormat},
		{"no extension", "collection", "", ErrFormat},
		{"invalid toml", "c.toml", "packs = [", ErrParse},
		{"packs not list", "c.toml", "packs = \"core\"", ErrFormat},
		{"pack not string", "c.toml", "packs = [1, 2]", ErrFormat},
		{"cards not table", "c.toml", "cards = 3", ErrFormat},
		{"count not integer", "c.toml", "[cards]\n\"01001\" = \"three\"", ErrFormat},
		{"missing not table", "c.toml", "missing = [1]", ErrFormat},
		{"legacy without code", "c.toml", "[[cards]]\ncount = 1", ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := Load(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseErrorCarriesPath(t *testing.T) {
	_, err := Decode([]byte("packs = ["), "broken.toml")

	var pErr *ParseError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if pErr.Path != "broken.toml" || pErr.Err == nil {
		t.Errorf("ParseError = %+v, want path and cause", pErr)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := NewManager(testIndex())
	m.AddPack("wla")
	m.AddPack("core")
	_ = m.AddCard("02001", 2)
	m.SetDifference("01001", -1)
	_ = m.AddMissing("01002", 1)

	path := filepath.Join(t.TempDir(), "nested", "dir", "collection.toml")
	if err := Save(m.State(), path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(loaded.Packs(), m.State().Packs()) {
		t.Errorf("packs: got %v, want %v", loaded.Packs(), m.State().Packs())
	}
	if !reflect.DeepEqual(loaded.Overrides(), m.State().Overrides()) {
		t.Errorf("overrides: got %v, want %v", loaded.Overrides(), m.State().Overrides())
	}
	if !reflect.DeepEqual(loaded.Diffs(), m.State().Diffs()) {
		t.Errorf("diffs: got %v, want %v", loaded.Diffs(), m.State().Diffs())
	}
	if !reflect.DeepEqual(loaded.Missing(), m.State().Missing()) {
		t.Errorf("missing: got %v, want %v", loaded.Missing(), m.State().Missing())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the collection file after save, found %d entries", len(entries))
	}
}

func TestSaveEmptyState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.toml")
	if err := Save(NewState(), path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	state, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(state.Packs()) != 0 || len(state.Overrides()) != 0 || len(state.Missing()) != 0 {
		t.Error("expected empty state after round trip")
	}
}

func TestSaveRejectsExtension(t *testing.T) {
	err := Save(NewState(), filepath.Join(t.TempDir(), "collection.json"))
	if !errors.Is(err, ErrFormat) {
		t.Errorf("Save() error = %v, want ErrFormat", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.toml")

	m, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if m.Path() != path {
		t.Errorf("Path() = %s, want %s", m.Path(), path)
	}

	_ = m.AddCard("01001", 1)
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := reopened.ActualCount("01001"); got != 1 {
		t.Errorf("ActualCount after reopen = %d, want 1", got)
	}
}

func TestTemplateParses(t *testing.T) {
	state, err := Decode([]byte(Template), "template.toml")
	if err != nil {
		t.Fatalf("Decode(Template) error = %v", err)
	}
	if !state.HasPack("core") {
		t.Error("template should own the core set")
	}
}
