package charts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPackCompletion(t *testing.T) {
	p := PackCompletion{Name: "System Gateway", Owned: 30, Total: 40}
	if p.Missing() != 10 {
		t.Errorf("Missing() = %d, want 10", p.Missing())
	}
	if p.Percentage() != 75 {
		t.Errorf("Percentage() = %v, want 75", p.Percentage())
	}

	if (PackCompletion{Owned: 5, Total: 3}).Missing() != 0 {
		t.Error("Missing() should never be negative")
	}
	if (PackCompletion{}).Percentage() != 0 {
		t.Error("empty pack should be 0%")
	}
}

func TestRenderPackCompletion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "packs.html")
	packs := []PackCompletion{
		{Name: "System Gateway", Owned: 40, Total: 65},
		{Name: "Elevation", Owned: 12, Total: 12},
	}

	if err := RenderPackCompletion(packs, DefaultChartConfig(), path); err != nil {
		t.Fatalf("RenderPackCompletion() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read chart: %v", err)
	}
	html := string(data)
	for _, want := range []string{"System Gateway", "Elevation", "Owned", "Missing"} {
		if !strings.Contains(html, want) {
			t.Errorf("chart HTML missing %q", want)
		}
	}
}

func TestRenderPackCompletionNoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.html")
	err := RenderPackCompletion(nil, DefaultChartConfig(), path)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be written without data")
	}
}
