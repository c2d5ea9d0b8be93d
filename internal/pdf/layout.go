package pdf

import (
	"fmt"
	"strings"
)

// Card and page geometry in millimetres.
const (
	CardWidth  = 63.0
	CardHeight = 88.0
	PageMargin = 6.35 // 0.25in

	Columns      = 3
	Rows         = 3
	CardsPerPage = Columns * Rows
)

// PageSize is a supported paper size.
type PageSize string

const (
	Letter PageSize = "letter"
	A4     PageSize = "a4"
	Legal  PageSize = "legal"
)

var pageDimensions = map[PageSize][2]float64{
	Letter: {215.9, 279.4},
	A4:     {210, 297},
	Legal:  {215.9, 355.6},
}

// ParsePageSize converts a user-supplied page size name.
func ParsePageSize(s string) (PageSize, error) {
	size := PageSize(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := pageDimensions[size]; !ok {
		return "", fmt.Errorf("unsupported page size %q (use letter, a4 or legal)", s)
	}
	return size, nil
}

// Layout places cards on a 3x3 grid, spreading the spare space evenly
// between columns and rows.
type Layout struct {
	PageWidth  float64
	PageHeight float64
	HGap       float64
	VGap       float64
}

// NewLayout computes the grid for a page size.
func NewLayout(size PageSize) (Layout, error) {
	dims, ok := pageDimensions[size]
	if !ok {
		return Layout{}, fmt.Errorf("unsupported page size %q", size)
	}
	return Layout{
		PageWidth:  dims[0],
		PageHeight: dims[1],
		HGap:       (dims[0] - 2*PageMargin - Columns*CardWidth) / (Columns - 1),
		VGap:       (dims[1] - 2*PageMargin - Rows*CardHeight) / (Rows - 1),
	}, nil
}

// Position returns the top-left corner of slot index (0-8) on a page.
func (l Layout) Position(index int) (x, y float64) {
	row := index / Columns
	col := index % Columns
	x = PageMargin + float64(col)*(CardWidth+l.HGap)
	y = PageMargin + float64(row)*(CardHeight+l.VGap)
	return x, y
}

// ColumnEdges returns the x coordinates of every card's left and right edge.
func (l Layout) ColumnEdges() []float64 {
	edges := make([]float64, 0, Columns*2)
	for col := 0; col < Columns; col++ {
		x, _ := l.Position(col)
		edges = append(edges, x, x+CardWidth)
	}
	return edges
}

// RowEdges returns the y coordinates of every card's top and bottom edge.
func (l Layout) RowEdges() []float64 {
	edges := make([]float64, 0, Rows*2)
	for row := 0; row < Rows; row++ {
		_, y := l.Position(row * Columns)
		edges = append(edges, y, y+CardHeight)
	}
	return edges
}

// PageCount returns the number of pages needed for n card slots.
func PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + CardsPerPage - 1) / CardsPerPage
}
