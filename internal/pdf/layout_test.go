package pdf

import (
	"math"
	"testing"
)

func TestParsePageSize(t *testing.T) {
	tests := []struct {
		input   string
		want    PageSize
		wantErr bool
	}{
		{"letter", Letter, false},
		{"A4", A4, false},
		{" Legal ", Legal, false},
		{"tabloid", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePageSize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePageSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePageSize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLayoutFitsPage(t *testing.T) {
	for _, size := range []PageSize{Letter, A4, Legal} {
		layout, err := NewLayout(size)
		if err != nil {
			t.Fatalf("NewLayout(%s) error = %v", size, err)
		}
		if layout.HGap < 0 || layout.VGap < 0 {
			t.Errorf("%s: negative gaps %v/%v", size, layout.HGap, layout.VGap)
		}

		x, y := layout.Position(0)
		if x != PageMargin || y != PageMargin {
			t.Errorf("%s: first slot at %v,%v, want margin", size, x, y)
		}

		x, y = layout.Position(CardsPerPage - 1)
		if !near(x+CardWidth, layout.PageWidth-PageMargin) {
			t.Errorf("%s: last column ends at %v, want %v", size, x+CardWidth, layout.PageWidth-PageMargin)
		}
		if !near(y+CardHeight, layout.PageHeight-PageMargin) {
			t.Errorf("%s: last row ends at %v, want %v", size, y+CardHeight, layout.PageHeight-PageMargin)
		}
	}

	if _, err := NewLayout("tabloid"); err == nil {
		t.Error("expected error for unknown page size")
	}
}

func TestLayoutEdges(t *testing.T) {
	layout, _ := NewLayout(Letter)

	cols := layout.ColumnEdges()
	rows := layout.RowEdges()
	if len(cols) != 6 || len(rows) != 6 {
		t.Fatalf("expected 6 edges each, got %d/%d", len(cols), len(rows))
	}
	for i := 1; i < len(cols); i++ {
		if cols[i] < cols[i-1] {
			t.Errorf("column edges not ascending: %v", cols)
		}
	}
	if !near(cols[1]-cols[0], CardWidth) || !near(rows[1]-rows[0], CardHeight) {
		t.Errorf("first card edges do not match card size: %v %v", cols, rows)
	}
}

func TestPageCount(t *testing.T) {
	tests := map[int]int{0: 0, 1: 1, 9: 1, 10: 2, 18: 2, 19: 3}
	for n, want := range tests {
		if got := PageCount(n); got != want {
			t.Errorf("PageCount(%d) = %d, want %d", n, got, want)
		}
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
