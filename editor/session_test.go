package editor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/milk9111/tilepaint/levels"
	"github.com/milk9111/tilepaint/render"
	"github.com/milk9111/tilepaint/tilemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ts = 32

// countingSurface records how many tiles were drawn into it.
type countingSurface struct {
	*render.RGBA
	draws int
}

func (c *countingSurface) DrawTile(sheet image.Image, src, dst image.Rectangle, rot tilemap.Rotation, opacity float64) {
	c.draws++
	c.RGBA.DrawTile(sheet, src, dst, rot, opacity)
}

func countingFactory(w, h int) render.Surface {
	return &countingSurface{RGBA: render.NewRGBA(w, h)}
}

type bufLogger struct{ lines []string }

func (l *bufLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func tileColor(tx, ty int) color.RGBA {
	return color.RGBA{R: uint8(40 + tx*50), G: uint8(40 + ty*100), B: 0x90, A: 0xff}
}

// testSheet is a 128x64 sheet of solid 32px tiles.
func testSheet(t *testing.T) (tilemap.SourceImage, *image.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4*ts, 2*ts))
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			img.SetRGBA(x, y, tileColor(x/ts, y/ts))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return tilemap.SourceImage{MediaType: "image/png", Data: buf.Bytes()}, img
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithLogger(&bufLogger{})}, opts...)
	s, err := New(tilemap.GridConfig{TileSize: ts, GridWidth: 3, GridHeight: 3}, countingFactory, opts...)
	require.NoError(t, err)
	src, _ := testSheet(t)
	require.NoError(t, s.LoadImage(src))
	return s
}

func gridAt(s *Session, x, y int) color.RGBA {
	return s.Grid().(*countingSurface).RGBAAt(x, y)
}

func gridDraws(s *Session) int {
	return s.Grid().(*countingSurface).draws
}

// sheetBox displays the sheet at twice its natural size.
var sheetBox = tilemap.Box{X: 0, Y: 0, W: 256, H: 128}

func TestPickRotatePlace(t *testing.T) {
	s := newTestSession(t)
	s.SetGridOrigin(tilemap.Vec{X: 300, Y: 0})

	require.True(t, s.PickTile(tilemap.Vec{X: 140, Y: 70}, sheetBox))
	ref, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, tilemap.TileRef{SourceX: 64, SourceY: 32}, ref)

	require.True(t, s.RotateSelection())
	s.PointerDown(ButtonPrimary, tilemap.Vec{X: 340, Y: 10})
	s.PointerUp(ButtonPrimary)

	cell := tilemap.CellCoord{Row: 0, Col: 1}
	got, ok := s.Tiles().Get(cell)
	require.True(t, ok)
	assert.Equal(t, tilemap.TileRef{SourceX: 64, SourceY: 32, Rotation: tilemap.Rotate90}, got)

	r := s.Config().CellRect(cell)
	assert.Equal(t, tileColor(2, 1), gridAt(s, r.Min.X+ts/2, r.Min.Y+ts/2))

	data, err := s.Save()
	require.NoError(t, err)
	st, err := levels.Decode(data)
	require.NoError(t, err)
	assert.True(t, s.Tiles().Equal(st.Tiles))
	require.NotNil(t, st.Image)
	assert.True(t, s.Source().Equal(*st.Image))
}

func TestPickTileOutsideSheet(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.PickTile(tilemap.Vec{X: 300, Y: 10}, sheetBox))
	_, ok := s.Selection()
	assert.False(t, ok)
	assert.False(t, s.RotateSelection(), "nothing to rotate")
}

func TestPickTileBeforeSheet(t *testing.T) {
	s, err := New(tilemap.DefaultGridConfig(), nil)
	require.NoError(t, err)
	assert.False(t, s.PickTile(tilemap.Vec{X: 1, Y: 1}, sheetBox))
	assert.False(t, s.SheetReady())
}

func TestSelectionRect(t *testing.T) {
	s := newTestSession(t)
	box := tilemap.Box{X: 10, Y: 20, W: 256, H: 128}
	require.True(t, s.PickTile(tilemap.Vec{X: 10 + 200, Y: 20 + 10}, box))
	rect, ok := s.SelectionRect()
	require.True(t, ok)
	assert.Equal(t, tilemap.Box{X: 10 + 192, Y: 20, W: 64, H: 64}, rect)
}

func TestPaintGestureDedupe(t *testing.T) {
	s := newTestSession(t)
	require.True(t, s.PickTile(tilemap.Vec{X: 1, Y: 1}, sheetBox))
	base := gridDraws(s)

	s.PointerDown(ButtonPrimary, tilemap.Vec{X: 5, Y: 5})
	s.PointerMove(tilemap.Vec{X: 10, Y: 10})
	s.PointerMove(tilemap.Vec{X: 20, Y: 30})
	assert.Equal(t, base+1, gridDraws(s), "same cell drawn once per gesture")

	s.PointerMove(tilemap.Vec{X: 40, Y: 5})
	assert.Equal(t, base+2, gridDraws(s))
	s.PointerMove(tilemap.Vec{X: 5, Y: 5})
	assert.Equal(t, base+3, gridDraws(s), "returning to a cell repaints it")

	s.PointerMove(tilemap.Vec{X: 500, Y: 5})
	assert.Equal(t, base+3, gridDraws(s), "out of bounds is ignored")
	s.PointerUp(ButtonPrimary)
	assert.False(t, s.Painting())

	s.PointerDown(ButtonPrimary, tilemap.Vec{X: 5, Y: 5})
	assert.Equal(t, base+4, gridDraws(s), "a new gesture starts fresh")
	s.PointerUp(ButtonPrimary)

	s.PointerMove(tilemap.Vec{X: 5, Y: 5})
	assert.Equal(t, base+4, gridDraws(s), "hover does not paint")
	assert.Equal(t, 2, s.Tiles().Len())
}

func TestPlaceRequiresSelectionAndBounds(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.Place(tilemap.CellCoord{Row: 0, Col: 0}), "no selection")

	require.True(t, s.PickTile(tilemap.Vec{X: 1, Y: 1}, sheetBox))
	for _, cell := range []tilemap.CellCoord{{Row: 3, Col: 0}, {Row: 0, Col: 3}, {Row: -1, Col: 0}} {
		assert.False(t, s.Place(cell), "cell %v", cell)
	}
	assert.Zero(t, s.Tiles().Len())

	assert.True(t, s.Place(tilemap.CellCoord{Row: 2, Col: 2}))
	assert.True(t, s.Place(tilemap.CellCoord{Row: 2, Col: 2}), "outside a gesture placing again overwrites")
	assert.Equal(t, 1, s.Tiles().Len())
}

func TestRotateAndDeleteAt(t *testing.T) {
	s := newTestSession(t)
	cell := tilemap.CellCoord{Row: 1, Col: 1}
	assert.False(t, s.RotateAt(cell), "empty cell")

	require.True(t, s.PickTile(tilemap.Vec{X: 70, Y: 1}, sheetBox))
	require.True(t, s.Place(cell))
	for _, want := range []tilemap.Rotation{tilemap.Rotate90, tilemap.Rotate180, tilemap.Rotate270, tilemap.Rotate0} {
		require.True(t, s.RotateAt(cell))
		ref, _ := s.Tiles().Get(cell)
		assert.Equal(t, want, ref.Rotation)
		assert.Equal(t, 32, ref.SourceX, "rotation keeps the source offset")
	}

	s.SetGridOrigin(tilemap.Vec{})
	s.PointerDown(ButtonMiddle, tilemap.Vec{X: 40, Y: 40})
	_, ok := s.Tiles().Get(cell)
	assert.False(t, ok)
	r := s.Config().CellRect(cell)
	assert.Equal(t, render.DefaultStyle().Background, gridAt(s, r.Min.X+1, r.Min.Y+1))
	assert.False(t, s.DeleteAt(cell), "already empty")
}

func TestSecondaryRotatesPlacedTile(t *testing.T) {
	s := newTestSession(t)
	require.True(t, s.PickTile(tilemap.Vec{X: 1, Y: 1}, sheetBox))
	require.True(t, s.Place(tilemap.CellCoord{}))
	s.PointerDown(ButtonSecondary, tilemap.Vec{X: 3, Y: 3})
	ref, _ := s.Tiles().Get(tilemap.CellCoord{})
	assert.Equal(t, tilemap.Rotate90, ref.Rotation)
	assert.False(t, s.Painting())
}

func TestPreview(t *testing.T) {
	s := newTestSession(t)
	preview := func(cell tilemap.CellCoord) color.RGBA {
		r := s.Config().CellRect(cell)
		return s.Preview().(*countingSurface).RGBAAt(r.Min.X+4, r.Min.Y+4)
	}
	a := tilemap.CellCoord{Row: 0, Col: 0}
	b := tilemap.CellCoord{Row: 0, Col: 1}

	s.PointerMove(tilemap.Vec{X: 5, Y: 5})
	assert.Equal(t, color.RGBA{}, preview(a), "no selection, no preview")

	require.True(t, s.PickTile(tilemap.Vec{X: 1, Y: 1}, sheetBox))
	assert.InDelta(t, 0x80, int(preview(a).A), 1, "picking refreshes the hovered cell")

	s.PointerMove(tilemap.Vec{X: 40, Y: 5})
	assert.Equal(t, color.RGBA{}, preview(a))
	assert.InDelta(t, 0x80, int(preview(b).A), 1)

	s.PointerDown(ButtonPrimary, tilemap.Vec{X: 40, Y: 5})
	assert.Equal(t, color.RGBA{}, preview(b), "hidden while painting")
	s.PointerUp(ButtonPrimary)
	assert.Equal(t, color.RGBA{}, preview(b), "occupied cells show no preview")

	s.PointerMove(tilemap.Vec{X: 5, Y: 5})
	require.NotZero(t, preview(a).A)
	s.PointerLeave()
	assert.Equal(t, color.RGBA{}, preview(a))
}

func TestStaleImageLoad(t *testing.T) {
	s, err := New(tilemap.GridConfig{TileSize: ts, GridWidth: 2, GridHeight: 2}, nil)
	require.NoError(t, err)
	srcA, imgA := testSheet(t)
	srcB := tilemap.SourceImage{MediaType: "image/png", Data: append([]byte(nil), srcA.Data...)}
	imgB := image.NewRGBA(image.Rect(0, 0, 64, 64))

	first := s.RequestImage(srcA)
	second := s.RequestImage(srcB)
	assert.Greater(t, second.Token, first.Token)

	err = s.CompleteImage(first.Token, imgA, nil)
	assert.ErrorIs(t, err, ErrStaleLoad)
	assert.False(t, s.SheetReady(), "stale completion is discarded")

	require.NoError(t, s.CompleteImage(second.Token, imgB, nil))
	assert.Same(t, imgB, s.Sheet())
	assert.Equal(t, image.Pt(64, 64), s.SheetSize())

	assert.ErrorIs(t, s.CompleteImage(second.Token, imgA, nil), ErrStaleLoad, "a token completes once")
	assert.Same(t, imgB, s.Sheet())
}

func TestFailedImageKeepsSheet(t *testing.T) {
	s := newTestSession(t)
	sheet := s.Sheet()
	source := s.Source()

	req := s.RequestImage(tilemap.SourceImage{MediaType: "image/png", Data: []byte("nope")})
	err := s.CompleteImage(req.Token, nil, errors.New("boom"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStaleLoad)
	assert.Same(t, sheet, s.Sheet())
	assert.Same(t, source, s.Source())

	assert.Error(t, s.LoadImage(tilemap.SourceImage{MediaType: "image/png", Data: []byte("nope")}))
	assert.Same(t, sheet, s.Sheet())
}

func TestReplacingSheetRebuilds(t *testing.T) {
	s := newTestSession(t)
	require.True(t, s.PickTile(tilemap.Vec{X: 1, Y: 1}, sheetBox))
	require.True(t, s.Place(tilemap.CellCoord{}))

	other := image.NewRGBA(image.Rect(0, 0, 64, 64))
	red := color.RGBA{R: 0xff, A: 0xff}
	for i := 0; i < len(other.Pix); i += 4 {
		copy(other.Pix[i:], []byte{red.R, red.G, red.B, red.A})
	}
	req := s.RequestImage(tilemap.SourceImage{MediaType: "image/png"})
	require.NoError(t, s.CompleteImage(req.Token, other, nil))

	assert.Equal(t, red, gridAt(s, 10, 10))
	ref, _ := s.Tiles().Get(tilemap.CellCoord{})
	assert.Equal(t, tilemap.TileRef{}, ref, "offsets are kept verbatim")
}

func TestApplySettings(t *testing.T) {
	s := newTestSession(t)
	require.True(t, s.PickTile(tilemap.Vec{X: 1, Y: 1}, sheetBox))
	require.True(t, s.Place(tilemap.CellCoord{Row: 0, Col: 0}))
	require.True(t, s.Place(tilemap.CellCoord{Row: 2, Col: 2}))

	t.Run("invalid", func(t *testing.T) {
		before := s.Config()
		grid := s.Grid()
		err := s.ApplySettings(tilemap.GridConfig{TileSize: 0, GridWidth: 4, GridHeight: 4})
		require.ErrorIs(t, err, tilemap.ErrInvalidConfig)
		var ce *tilemap.InvalidConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "tile size", ce.Field)
		assert.Equal(t, before, s.Config())
		assert.Same(t, grid, s.Grid())
		assert.Equal(t, 2, s.Tiles().Len())
	})

	t.Run("too large", func(t *testing.T) {
		grid := s.Grid()
		for _, cfg := range []tilemap.GridConfig{
			{TileSize: 1 << 20, GridWidth: 1 << 20, GridHeight: 1 << 20},
			{TileSize: ts, GridWidth: 1 << 40, GridHeight: 2},
			{TileSize: ts, GridWidth: 2, GridHeight: tilemap.MaxPixelExtent},
		} {
			err := s.ApplySettings(cfg)
			require.ErrorIs(t, err, tilemap.ErrInvalidConfig, "%+v", cfg)
			var ce *tilemap.InvalidConfigError
			require.ErrorAs(t, err, &ce)
			assert.Positive(t, ce.Max)
		}
		assert.Same(t, grid, s.Grid())
		assert.Equal(t, 2, s.Tiles().Len())
	})

	t.Run("shrink", func(t *testing.T) {
		cfg := tilemap.GridConfig{TileSize: 16, GridWidth: 2, GridHeight: 2}
		require.NoError(t, s.ApplySettings(cfg))
		assert.Equal(t, cfg, s.Config())
		assert.Equal(t, 1, s.Tiles().Len())
		assert.Equal(t, image.Rect(0, 0, 33, 33), s.Grid().Bounds())
		assert.Equal(t, image.Rect(0, 0, 33, 33), s.Lines().Bounds())
		assert.Equal(t, tileColor(0, 0), gridAt(s, 8, 8), "tiles are rebuilt at the new size")
	})
}

func TestGridVisibility(t *testing.T) {
	s := newTestSession(t)
	lines := func() color.RGBA { return s.Lines().(*countingSurface).RGBAAt(0, 5) }
	assert.NotZero(t, lines().A)

	s.ToggleGrid()
	assert.False(t, s.GridVisible())
	assert.Zero(t, lines().A)

	require.NoError(t, s.ApplySettings(tilemap.GridConfig{TileSize: ts, GridWidth: 4, GridHeight: 4}))
	assert.Zero(t, lines().A, "hidden grid stays hidden across rebuilds")

	s.SetGridVisible(true)
	assert.NotZero(t, lines().A)
}

func TestOpenDocument(t *testing.T) {
	s := newTestSession(t)
	data, err := levels.LevelsFS.ReadFile(levels.SampleName)
	require.NoError(t, err)

	require.NoError(t, s.OpenDocument(data))
	assert.Equal(t, tilemap.GridConfig{TileSize: 64, GridWidth: 4, GridHeight: 3}, s.Config())
	assert.True(t, s.SheetReady())
	assert.Equal(t, image.Pt(256, 128), s.SheetSize())
	assert.Equal(t, 8, s.Tiles().Len())

	saved, err := s.Save()
	require.NoError(t, err)
	want, err := levels.Decode(data)
	require.NoError(t, err)
	got, err := levels.Decode(saved)
	require.NoError(t, err)
	assert.Equal(t, want.Config, got.Config)
	assert.True(t, want.Tiles.Equal(got.Tiles))
	assert.True(t, want.Image.Equal(*got.Image))
}

func TestLoadDocumentAsync(t *testing.T) {
	s := newTestSession(t)
	src, _ := testSheet(t)
	doc := levels.Encode(tilemap.GridConfig{TileSize: ts, GridWidth: 2, GridHeight: 2}, &src, tilemap.NewStore())
	doc.GridData["1-1"] = levels.TileData{X: 96, Y: 32, Rotation: 270}
	data, err := levels.Marshal(doc)
	require.NoError(t, err)

	req, err := s.LoadDocument(data)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.False(t, s.SheetReady(), "document sheet is still decoding")

	_, sheet := testSheet(t)
	require.NoError(t, s.CompleteImage(req.Token, sheet, nil))
	r := s.Config().CellRect(tilemap.CellCoord{Row: 1, Col: 1})
	assert.Equal(t, tileColor(3, 1), gridAt(s, r.Min.X+5, r.Min.Y+5))
}

func TestSaveWhileDocumentSheetDecodes(t *testing.T) {
	s := newTestSession(t)
	src, _ := testSheet(t)
	doc := levels.Encode(tilemap.GridConfig{TileSize: ts, GridWidth: 2, GridHeight: 2}, &src, tilemap.NewStore())
	data, err := levels.Marshal(doc)
	require.NoError(t, err)

	req, err := s.LoadDocument(data)
	require.NoError(t, err)
	require.NotNil(t, req)

	saved, err := s.Save()
	require.NoError(t, err)
	st, err := levels.Decode(saved)
	require.NoError(t, err)
	require.NotNil(t, st.Image, "pending sheet is saved")
	assert.True(t, st.Image.Equal(src))
	assert.Equal(t, data, saved)
}

func TestUndecodableDocumentSheet(t *testing.T) {
	s := newTestSession(t)
	src := tilemap.SourceImage{MediaType: "image/png", Data: []byte("not an image")}
	cfg := tilemap.GridConfig{TileSize: 16, GridWidth: 2, GridHeight: 2}
	tiles := tilemap.NewStore()
	tiles.Set(tilemap.CellCoord{Row: 1, Col: 0}, tilemap.TileRef{SourceX: 16})
	data, err := levels.Marshal(levels.Encode(cfg, &src, tiles))
	require.NoError(t, err)

	err = s.OpenDocument(data)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStaleLoad))
	assert.False(t, s.SheetReady())
	assert.Equal(t, cfg, s.Config())
	assert.Equal(t, 1, s.Tiles().Len())

	saved, err := s.Save()
	require.NoError(t, err)
	assert.Equal(t, data, saved, "the undecodable sheet is written back as loaded")

	// a sheet opened afterwards replaces it
	good, _ := testSheet(t)
	require.NoError(t, s.LoadImage(good))
	assert.True(t, s.Source().Equal(good))
}

func TestLoadDocumentWithoutSheetKeepsCurrent(t *testing.T) {
	s := newTestSession(t)
	sheet := s.Sheet()
	req, err := s.LoadDocument([]byte(`{"gridWidth":2,"gridHeight":2,"tileSize":32,"gridData":{"0-0":{"x":0,"y":0,"rotation":0}}}`))
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Same(t, sheet, s.Sheet())
	assert.Equal(t, tileColor(0, 0), gridAt(s, 4, 4))
}

func TestLoadDocumentErrors(t *testing.T) {
	logger := &bufLogger{}
	s := newTestSession(t, WithLogger(logger))
	before := s.Config()

	_, err := s.LoadDocument([]byte(`not json`))
	require.ErrorIs(t, err, levels.ErrDocumentFormat)
	assert.Equal(t, before, s.Config())
	assert.True(t, s.SheetReady())

	grid := s.Grid()
	_, err = s.LoadDocument([]byte(`{"gridWidth":2147483648,"gridHeight":2147483648,"tileSize":64}`))
	require.ErrorIs(t, err, levels.ErrDocumentFormat)
	require.ErrorIs(t, err, tilemap.ErrInvalidConfig)
	assert.Equal(t, before, s.Config())
	assert.Same(t, grid, s.Grid())

	_, err = s.LoadDocument([]byte(`{"gridWidth":1,"gridHeight":1,"gridData":{"0-0":{"x":0,"y":0,"rotation":0},"4-4":{"x":0,"y":0,"rotation":0}}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Tiles().Len())
	require.Len(t, logger.lines, 1)
	assert.Contains(t, logger.lines[0], "dropped 1")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(tilemap.GridConfig{TileSize: 8, GridWidth: 0, GridHeight: 1}, nil)
	assert.ErrorIs(t, err, tilemap.ErrInvalidConfig)
}
