// Package render composites tiles from a source image onto drawing
// surfaces. The Compositor only talks to the Surface interface so the same
// drawing code backs the ebiten editor window and headless PNG export.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/milk9111/tilepaint/tilemap"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Surface is a destination the Compositor draws into.
type Surface interface {
	Bounds() image.Rectangle
	// Clear makes the whole surface transparent.
	Clear()
	// Fill replaces the pixels of r with c.
	Fill(r image.Rectangle, c color.Color)
	// DrawTile draws the src rectangle of sheet into dst, rotated clockwise
	// about the centre of dst, blended over the existing pixels at opacity.
	// src and dst have the same size.
	DrawTile(sheet image.Image, src, dst image.Rectangle, rot tilemap.Rotation, opacity float64)
}

// SurfaceFactory creates a blank surface of the given size.
type SurfaceFactory func(w, h int) Surface

// RGBA is a CPU Surface backed by an *image.RGBA.
type RGBA struct {
	*image.RGBA
	scratch *image.RGBA
}

func NewRGBA(w, h int) *RGBA {
	return &RGBA{RGBA: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// NewRGBASurface is a SurfaceFactory for RGBA surfaces.
func NewRGBASurface(w, h int) Surface {
	return NewRGBA(w, h)
}

func (s *RGBA) Clear() {
	draw.Draw(s.RGBA, s.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (s *RGBA) Fill(r image.Rectangle, c color.Color) {
	draw.Draw(s.RGBA, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *RGBA) DrawTile(sheet image.Image, src, dst image.Rectangle, rot tilemap.Rotation, opacity float64) {
	if opacity <= 0 || src.Empty() {
		return
	}
	tile := s.tileBuffer(src.Size())
	if rot == tilemap.Rotate0 {
		// Transform turns an identity matrix into a Copy with the wrong Y
		// offset whenever src.Min.X != src.Min.Y, so copy directly.
		draw.Copy(tile, image.Point{}, sheet, src, draw.Src, nil)
	} else {
		draw.NearestNeighbor.Transform(tile, rotationMatrix(src, rot), sheet, src, draw.Src, nil)
	}
	if opacity >= 1 {
		draw.Draw(s.RGBA, dst, tile, image.Point{}, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 0xff))})
	draw.DrawMask(s.RGBA, dst, tile, image.Point{}, mask, image.Point{}, draw.Over)
}

// tileBuffer returns a transparent scratch image of size, reused between draws.
func (s *RGBA) tileBuffer(size image.Point) *image.RGBA {
	if s.scratch == nil || s.scratch.Bounds().Size() != size {
		s.scratch = image.NewRGBA(image.Rectangle{Max: size})
		return s.scratch
	}
	clear(s.scratch.Pix)
	return s.scratch
}

// rotationMatrix maps source pixels in src onto a tile-sized buffer at the
// origin, turned clockwise about the buffer centre. Rotations are quarter
// turns, so sin and cos are snapped to exact integers.
func rotationMatrix(src image.Rectangle, rot tilemap.Rotation) f64.Aff3 {
	rad := rot.Radians()
	c, s := math.Round(math.Cos(rad)), math.Round(math.Sin(rad))
	hw := float64(src.Dx()) / 2
	hh := float64(src.Dy()) / 2
	cx := float64(src.Min.X) + hw
	cy := float64(src.Min.Y) + hh
	return f64.Aff3{
		c, -s, hw - c*cx + s*cy,
		s, c, hh - s*cx - c*cy,
	}
}
