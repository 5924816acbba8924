package tilemap

import (
	"image"
	"math"
)

// Vec is a pointer position in screen pixels.
type Vec struct {
	X, Y float64
}

// Box is an axis-aligned rectangle in screen pixels, used for where the
// source image is currently displayed.
type Box struct {
	X, Y, W, H float64
}

func (b Box) Contains(p Vec) bool {
	return p.X >= b.X && p.Y >= b.Y && p.X < b.X+b.W && p.Y < b.Y+b.H
}

// PickSourceTile maps a pointer over the displayed source image to the origin
// of the tile under it, in source pixels. The X and Y scale factors are
// computed independently so a stretched display still picks the right tile.
// ok is false for a degenerate display box, a non-positive tile size or a
// pointer outside the image.
func PickSourceTile(pointer Vec, displayed Box, natural image.Point, tileSize int) (image.Point, bool) {
	if tileSize <= 0 || displayed.W <= 0 || displayed.H <= 0 || natural.X <= 0 || natural.Y <= 0 {
		return image.Point{}, false
	}
	scaleX := float64(natural.X) / displayed.W
	scaleY := float64(natural.Y) / displayed.H
	actualX := (pointer.X - displayed.X) * scaleX
	actualY := (pointer.Y - displayed.Y) * scaleY
	if actualX < 0 || actualY < 0 || actualX >= float64(natural.X) || actualY >= float64(natural.Y) {
		return image.Point{}, false
	}
	tileX := int(math.Floor(actualX / float64(tileSize)))
	tileY := int(math.Floor(actualY / float64(tileSize)))
	return image.Pt(tileX*tileSize, tileY*tileSize), true
}

// DisplayedTileRect is the inverse of PickSourceTile: the on-screen box that
// the tile at origin occupies while the image is displayed in displayed.
func DisplayedTileRect(origin image.Point, displayed Box, natural image.Point, tileSize int) (Box, bool) {
	if natural.X <= 0 || natural.Y <= 0 || tileSize <= 0 {
		return Box{}, false
	}
	sx := displayed.W / float64(natural.X)
	sy := displayed.H / float64(natural.Y)
	return Box{
		X: displayed.X + float64(origin.X)*sx,
		Y: displayed.Y + float64(origin.Y)*sy,
		W: float64(tileSize) * sx,
		H: float64(tileSize) * sy,
	}, true
}

// PointerToCell maps a pointer to the grid cell under it. The result is not
// bounds-checked; use GridConfig.Contains before mutating a Store. tileSize
// must be positive.
func PointerToCell(pointer Vec, origin Vec, tileSize int) CellCoord {
	ts := float64(tileSize)
	return CellCoord{
		Row: int(math.Floor((pointer.Y - origin.Y) / ts)),
		Col: int(math.Floor((pointer.X - origin.X) / ts)),
	}
}
