package render

import (
	"image"
	"image/color"

	"github.com/milk9111/tilepaint/tilemap"
	"golang.org/x/image/draw"
)

// Style holds the colours the Compositor paints with.
type Style struct {
	Background     color.Color
	GridLine       color.Color
	PreviewOpacity float64
}

func DefaultStyle() Style {
	return Style{
		Background:     color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		GridLine:       color.NRGBA{R: 200, G: 200, B: 200, A: 64},
		PreviewOpacity: 0.5,
	}
}

// Compositor draws placed tiles, grid lines and the placement preview. Every
// method returns false and draws nothing until a sheet has been set.
type Compositor struct {
	cfg   tilemap.GridConfig
	style Style
	sheet image.Image
}

func NewCompositor(cfg tilemap.GridConfig, style Style) *Compositor {
	return &Compositor{cfg: cfg, style: style}
}

func (c *Compositor) Config() tilemap.GridConfig { return c.cfg }

func (c *Compositor) SetConfig(cfg tilemap.GridConfig) { c.cfg = cfg }

func (c *Compositor) Style() Style { return c.style }

// SetSheet replaces the source image. nil marks the sheet as not loaded.
func (c *Compositor) SetSheet(sheet image.Image) { c.sheet = sheet }

func (c *Compositor) Sheet() image.Image { return c.sheet }

// Ready reports whether a sheet is loaded.
func (c *Compositor) Ready() bool { return c.sheet != nil }

// RenderTile clears the cell to the background and draws ref into it. A ref
// whose rotation is not a quarter turn is not drawn.
func (c *Compositor) RenderTile(dst Surface, cell tilemap.CellCoord, ref tilemap.TileRef) bool {
	if !c.Ready() || !ref.Rotation.Valid() {
		return false
	}
	r := c.cfg.CellRect(cell)
	dst.Fill(r, c.style.Background)
	dst.DrawTile(c.sheet, ref.SourceRect(c.cfg.TileSize), r, ref.Rotation, 1)
	return true
}

// ClearCell fills the cell with the background.
func (c *Compositor) ClearCell(dst Surface, cell tilemap.CellCoord) bool {
	if !c.Ready() {
		return false
	}
	dst.Fill(c.cfg.CellRect(cell), c.style.Background)
	return true
}

// RebuildAll repaints the whole grid from tiles.
func (c *Compositor) RebuildAll(dst Surface, tiles *tilemap.Store) bool {
	if !c.Ready() {
		return false
	}
	dst.Fill(dst.Bounds(), c.style.Background)
	tiles.Each(func(cell tilemap.CellCoord, ref tilemap.TileRef) {
		c.RenderTile(dst, cell, ref)
	})
	return true
}

// RenderGridOverlay redraws the grid-line overlay. When visible, 1 pixel
// lines are drawn on every tile boundary from 0 through the grid size
// inclusive; otherwise the overlay is left blank.
func (c *Compositor) RenderGridOverlay(dst Surface, visible bool) bool {
	if !c.Ready() {
		return false
	}
	dst.Clear()
	if !visible {
		return true
	}
	ts := c.cfg.TileSize
	w := c.cfg.GridWidth * ts
	h := c.cfg.GridHeight * ts
	for x := 0; x <= c.cfg.GridWidth; x++ {
		dst.Fill(image.Rect(x*ts, 0, x*ts+1, h+1), c.style.GridLine)
	}
	for y := 0; y <= c.cfg.GridHeight; y++ {
		dst.Fill(image.Rect(0, y*ts, w+1, y*ts+1), c.style.GridLine)
	}
	return true
}

// RenderPreview clears the preview overlay and draws ref at cell at the
// preview opacity.
func (c *Compositor) RenderPreview(dst Surface, cell tilemap.CellCoord, ref tilemap.TileRef) bool {
	if !c.Ready() || !ref.Rotation.Valid() {
		return false
	}
	dst.Clear()
	dst.DrawTile(c.sheet, ref.SourceRect(c.cfg.TileSize), c.cfg.CellRect(cell), ref.Rotation, c.style.PreviewOpacity)
	return true
}

// Flatten draws layers over dst in order, bottom first.
func Flatten(dst draw.Image, layers ...image.Image) {
	for _, l := range layers {
		if l == nil {
			continue
		}
		draw.Draw(dst, dst.Bounds(), l, l.Bounds().Min, draw.Over)
	}
}
