package pdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/NRDB-Companion/internal/proxy"
)

type fakeImages struct {
	mu    sync.Mutex
	paths map[string]string
	calls map[string]int
}

func (f *fakeImages) Fetch(ctx context.Context, code, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[code]++
	if path, ok := f.paths[code]; ok {
		return path, nil
	}
	return "", errors.New("image not available")
}

func writePNG(t *testing.T, dir, code string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 30, 42))
	for x := 0; x < 30; x++ {
		for y := 0; y < 42; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	path := filepath.Join(dir, code+".png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func testCards() []proxy.Card {
	return []proxy.Card{
		{Code: "30010", Title: "Sure Gamble", PackName: "System Gateway", TypeCode: "event", ImageURL: "https://img/30010.jpg", Copies: 3},
		{Code: "30034", Title: "Diesel", PackName: "System Gateway", TypeCode: "event", ImageURL: "https://img/30034.jpg", Copies: 3},
		{Code: "26001", Title: "Zahya Sadeghi: Versatile Smuggler", PackName: "Ashes: Downfall", TypeCode: "identity", ImageURL: "https://img/26001.jpg", Copies: 4},
	}
}

func TestGenerateWithImagesAndPlaceholders(t *testing.T) {
	images := &fakeImages{paths: map[string]string{"30010": writePNG(t, t.TempDir(), "30010")}}
	gen, err := NewGenerator(images, Options{PageSize: A4, DownloadImages: true, GroupByPack: true})
	require.NoError(t, err)

	doc, err := gen.render(context.Background(), testCards())
	require.NoError(t, err)
	assert.Equal(t, 2, doc.PageCount())
	assert.NoError(t, doc.Error())

	for _, code := range []string{"30010", "30034", "26001"} {
		assert.Equal(t, 1, images.calls[code], "each card fetched once: %s", code)
	}

	var buf bytes.Buffer
	require.NoError(t, gen.Generate(context.Background(), testCards(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGenerateWithoutImages(t *testing.T) {
	images := &fakeImages{}
	gen, err := NewGenerator(images, Options{DownloadImages: false})
	require.NoError(t, err)

	doc, err := gen.render(context.Background(), testCards()[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())
	assert.Empty(t, images.calls)
}

func TestGenerateNoCards(t *testing.T) {
	gen, err := NewGenerator(nil, DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	err = gen.Generate(context.Background(), []proxy.Card{{Code: "30010", Copies: 0}}, &buf)
	assert.ErrorIs(t, err, ErrNoCards)
}

func TestGenerateCancelled(t *testing.T) {
	gen, err := NewGenerator(&fakeImages{}, DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err = gen.Generate(ctx, testCards(), &buf)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateFile(t *testing.T) {
	gen, err := NewGenerator(nil, Options{PageSize: Letter})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "decks", "runner", "abc", "deck.pdf")
	require.NoError(t, gen.GenerateFile(context.Background(), testCards(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".proxies-*"))
	assert.Empty(t, leftovers)
}

func TestNewGeneratorRejectsUnknownSize(t *testing.T) {
	_, err := NewGenerator(nil, Options{PageSize: "tabloid"})
	assert.Error(t, err)
}

func TestCheckImage(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, checkImage(writePNG(t, dir, "ok")))

	bad := filepath.Join(dir, "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	assert.Error(t, checkImage(bad))
}

func TestFitInside(t *testing.T) {
	w, h := fitInside(300, 420, CardWidth, CardHeight)
	assert.InDelta(t, 62.857, w, 0.01)
	assert.InDelta(t, CardHeight, h, 0.001)

	w, h = fitInside(0, 0, CardWidth, CardHeight)
	assert.Equal(t, CardWidth, w)
	assert.Equal(t, CardHeight, h)
}

func TestGenerateAccentedPlaceholders(t *testing.T) {
	gen, err := NewGenerator(nil, Options{PageSize: Letter})
	require.NoError(t, err)

	list := []proxy.Card{
		{Code: "01002", Title: "Déjà Vu", PackName: "Núcleo", TypeCode: "event", Copies: 1},
		{Code: "02054", Title: "Señor Creampuff", PackName: "Opening Moves", TypeCode: "asset", Copies: 1},
		{Code: "33001", Title: "Nōtan’s “Ghost” Protocol: A Very Long Title Indeed", PackName: "Ōkami Ψ", TypeCode: "agenda", Copies: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, gen.Generate(context.Background(), list, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func newTextDoc(t *testing.T) (*fpdf.Fpdf, func(string) string) {
	t.Helper()
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "B", 12)
	return doc, doc.UnicodeTranslatorFromDescriptor("")
}

func TestWrapText(t *testing.T) {
	doc, tr := newTextDoc(t)
	width := CardWidth - 5.08

	assert.Equal(t, []string{"Déjà Vu"}, wrapText(doc, tr, "Déjà Vu", width, 2))
	assert.Empty(t, wrapText(doc, tr, "  ", width, 2))

	long := strings.Repeat("Zahya Sadeghi Versatile Smuggler ", 4)
	lines := wrapText(doc, tr, long, width, 2)
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.LessOrEqual(t, doc.GetStringWidth(tr(line)), width, line)
	}
	assert.True(t, strings.HasSuffix(lines[1], "..."))
	assert.NoError(t, doc.Error())
}

func TestTruncateToWidthMeasuresTranslatedText(t *testing.T) {
	doc, tr := newTextDoc(t)
	doc.SetFont("Helvetica", "", 10)

	line := "Pack: Núcleo Déjà"
	exact := doc.GetStringWidth(tr(line))
	assert.Equal(t, line, truncateToWidth(doc, tr, line, exact))

	short := truncateToWidth(doc, tr, line, exact/2)
	assert.True(t, strings.HasSuffix(short, "..."))
	assert.LessOrEqual(t, doc.GetStringWidth(tr(short)), exact/2)
}
