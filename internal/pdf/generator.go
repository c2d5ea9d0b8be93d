// Package pdf renders proxy cards onto printable pages.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/NRDB-Companion/internal/proxy"
)

// ErrNoCards is returned when there is nothing to print.
var ErrNoCards = errors.New("no cards to print")

const defaultConcurrency = 4

// ImageSource resolves a card image to a local file. *imagecache.Cache
// satisfies it.
type ImageSource interface {
	Fetch(ctx context.Context, code, imageURL string) (string, error)
}

// Options configures a Generator.
type Options struct {
	PageSize       PageSize
	DownloadImages bool
	GroupByPack    bool
	Concurrency    int // parallel image downloads
	Logger         *log.Logger
}

// DefaultOptions returns letter-sized output with images.
func DefaultOptions() Options {
	return Options{
		PageSize:       Letter,
		DownloadImages: true,
		Concurrency:    defaultConcurrency,
	}
}

// Generator produces proxy sheets.
type Generator struct {
	images ImageSource
	opts   Options
	layout Layout
	logger *log.Logger
}

// NewGenerator creates a generator. images may be nil when opts.DownloadImages
// is false.
func NewGenerator(images ImageSource, opts Options) (*Generator, error) {
	if opts.PageSize == "" {
		opts.PageSize = Letter
	}
	layout, err := NewLayout(opts.PageSize)
	if err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Generator{images: images, opts: opts, layout: layout, logger: logger}, nil
}

// GenerateFile renders list to path, creating parent directories.
func (g *Generator) GenerateFile(ctx context.Context, list []proxy.Card, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".proxies-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := g.Generate(ctx, list, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move PDF into place: %w", err)
	}
	return nil
}

// Generate renders one slot per copy of each card in list and writes the
// document to w. Cards whose image cannot be fetched get a placeholder.
func (g *Generator) Generate(ctx context.Context, list []proxy.Card, w io.Writer) error {
	doc, err := g.render(ctx, list)
	if err != nil {
		return err
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

func (g *Generator) render(ctx context.Context, list []proxy.Card) (*fpdf.Fpdf, error) {
	slots := proxy.Expand(list, g.opts.GroupByPack)
	if len(slots) == 0 {
		return nil, ErrNoCards
	}

	images, err := g.prefetch(ctx, list)
	if err != nil {
		return nil, err
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.layout.PageWidth, Ht: g.layout.PageHeight},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle("Proxy cards", true)
	doc.SetCreator("nrdb-companion", true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for i, card := range slots {
		slot := i % CardsPerPage
		if slot == 0 {
			doc.AddPage()
			g.drawCutLines(doc)
		}
		x, y := g.layout.Position(slot)
		if path, ok := images[card.Code]; ok {
			g.drawImage(doc, path, x, y)
			continue
		}
		g.drawPlaceholder(doc, tr, card, x, y)
	}

	g.logger.Debug("Rendered proxies", "cards", len(slots), "pages", doc.PageCount())
	return doc, nil
}

// prefetch downloads the images for every distinct card in parallel. Failed
// downloads are logged and fall back to placeholders.
func (g *Generator) prefetch(ctx context.Context, list []proxy.Card) (map[string]string, error) {
	images := make(map[string]string)
	if !g.opts.DownloadImages || g.images == nil {
		return images, nil
	}

	var mu sync.Mutex
	seen := make(map[string]bool)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(g.opts.Concurrency)

	for _, card := range list {
		if card.Copies <= 0 || card.ImageURL == "" || seen[card.Code] {
			continue
		}
		seen[card.Code] = true

		card := card
		group.Go(func() error {
			path, err := g.images.Fetch(gctx, card.Code, card.ImageURL)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				g.logger.Warn("Using placeholder", "card", card.Code, "err", err)
				return nil
			}
			if err := checkImage(path); err != nil {
				g.logger.Warn("Using placeholder", "card", card.Code, "err", err)
				return nil
			}
			mu.Lock()
			images[card.Code] = path
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// checkImage verifies that path decodes as an image fpdf can embed.
func checkImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("unreadable image: %w", err)
	}
	if format != "jpeg" && format != "png" {
		return fmt.Errorf("unsupported image format %q", format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("empty image")
	}
	return nil
}

func (g *Generator) drawCutLines(doc *fpdf.Fpdf) {
	cols := g.layout.ColumnEdges()
	rows := g.layout.RowEdges()
	left, right := cols[0], cols[len(cols)-1]
	top, bottom := rows[0], rows[len(rows)-1]

	doc.SetDrawColor(179, 179, 179)
	doc.SetLineWidth(0.18)
	doc.SetDashPattern([]float64{1.06, 1.06}, 0)
	for _, y := range rows {
		doc.Line(left, y, right, y)
	}
	for _, x := range cols {
		doc.Line(x, top, x, bottom)
	}
	doc.SetDashPattern([]float64{}, 0)
	doc.SetDrawColor(0, 0, 0)
}

func (g *Generator) drawImage(doc *fpdf.Fpdf, path string, x, y float64) {
	opts := fpdf.ImageOptions{ImageType: strings.TrimPrefix(filepath.Ext(path), "."), ReadDpi: false}
	info := doc.RegisterImageOptions(path, opts)
	if info == nil {
		return
	}

	w, h := fitInside(info.Width(), info.Height(), CardWidth, CardHeight)
	doc.ImageOptions(path, x+(CardWidth-w)/2, y+(CardHeight-h)/2, w, h, false, opts, 0, "")
}

func (g *Generator) drawPlaceholder(doc *fpdf.Fpdf, tr func(string) string, card proxy.Card, x, y float64) {
	doc.SetLineWidth(0.3)
	doc.Rect(x, y, CardWidth, CardHeight, "D")

	textX := x + 2.54
	textW := CardWidth - 5.08
	lineY := y + 7.62

	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "B", 12)
	for _, line := range wrapText(doc, tr, card.Title, textW, 2) {
		doc.Text(textX, lineY, tr(line))
		lineY += 5
	}

	doc.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		"Code: " + card.Code,
		"Pack: " + card.PackName,
		"Type: " + card.TypeCode,
	} {
		lineY += 1.3
		doc.Text(textX, lineY, tr(truncateToWidth(doc, tr, line, textW)))
		lineY += 4
	}

	cx, cy := x+CardWidth/2, y+CardHeight/2
	doc.SetFont("Helvetica", "B", 36)
	doc.SetTextColor(204, 204, 204)
	doc.TransformBegin()
	doc.TransformRotate(45, cx, cy)
	doc.Text(cx-doc.GetStringWidth("PROXY")/2, cy+4, "PROXY")
	doc.TransformEnd()
	doc.SetTextColor(0, 0, 0)
}

// fitInside scales w x h to fit within maxW x maxH keeping the aspect ratio.
func fitInside(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

// wrapText breaks s into at most maxLines lines that fit width once
// translated for the core fonts. The last line is truncated when words
// remain. Lines are returned untranslated.
func wrapText(doc *fpdf.Fpdf, tr func(string) string, s string, width float64, maxLines int) []string {
	words := strings.Fields(s)
	var lines []string
	current := ""
	for i, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current == "" || doc.GetStringWidth(tr(candidate)) <= width {
			current = candidate
			continue
		}
		if len(lines) >= maxLines-1 {
			rest := current + " " + strings.Join(words[i:], " ")
			return append(lines, truncateToWidth(doc, tr, rest, width))
		}
		lines = append(lines, truncateToWidth(doc, tr, current, width))
		current = word
	}
	if current != "" {
		lines = append(lines, truncateToWidth(doc, tr, current, width))
	}
	return lines
}

// truncateToWidth shortens s with "..." until its translation fits width.
func truncateToWidth(doc *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if doc.GetStringWidth(tr(s)) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && doc.GetStringWidth(tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
