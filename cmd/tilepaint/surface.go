package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/tilepaint/render"
	"github.com/milk9111/tilepaint/tilemap"
)

// sheetCache uploads the decoded sheet to the GPU once and shares it between
// every surface.
type sheetCache struct {
	src image.Image
	img *ebiten.Image
}

func (c *sheetCache) get(sheet image.Image) *ebiten.Image {
	if sheet == c.src && c.img != nil {
		return c.img
	}
	if c.img != nil {
		c.img.Deallocate()
	}
	c.src = sheet
	c.img = ebiten.NewImageFromImage(sheet)
	return c.img
}

// surface implements render.Surface on an offscreen *ebiten.Image.
type surface struct {
	img    *ebiten.Image
	sheets *sheetCache
}

func newSurfaceFactory(cache *sheetCache) render.SurfaceFactory {
	return func(w, h int) render.Surface {
		return &surface{img: ebiten.NewImage(w, h), sheets: cache}
	}
}

func (s *surface) Image() *ebiten.Image { return s.img }

func (s *surface) Bounds() image.Rectangle { return s.img.Bounds() }

func (s *surface) Clear() { s.img.Clear() }

func (s *surface) Fill(r image.Rectangle, c color.Color) {
	r = r.Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	s.img.SubImage(r).(*ebiten.Image).Fill(c)
}

func (s *surface) DrawTile(sheet image.Image, src, dst image.Rectangle, rot tilemap.Rotation, opacity float64) {
	if opacity <= 0 {
		return
	}
	tile := s.sheets.get(sheet).SubImage(src).(*ebiten.Image)
	if tile.Bounds().Empty() {
		return
	}
	// Turn about the centre of the full tile square, not the clipped
	// sub-image, so a tile hanging off the sheet edge lands where the CPU
	// surface puts it.
	hw := float64(src.Dx()) / 2
	hh := float64(src.Dy()) / 2

	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterNearest
	op.GeoM.Translate(-hw, -hh)
	op.GeoM.Rotate(rot.Radians())
	op.GeoM.Translate(float64(dst.Min.X)+hw, float64(dst.Min.Y)+hh)
	if opacity < 1 {
		op.ColorScale.ScaleAlpha(float32(opacity))
	}
	s.img.DrawImage(tile, op)
}

func (s *surface) Deallocate() { s.img.Deallocate() }
