// Package tilemap holds the editing model: grid configuration, placed tiles,
// the current selection and the pointer-to-grid coordinate math.
package tilemap

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

// Rotation is a clockwise quarter turn in degrees: 0, 90, 180 or 270.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// NormalizeRotation folds deg into [0, 360). ok is false when deg is not a
// multiple of 90.
func NormalizeRotation(deg int) (Rotation, bool) {
	r := ((deg % 360) + 360) % 360
	if r%90 != 0 {
		return Rotate0, false
	}
	return Rotation(r), true
}

// Next advances the rotation by 90 degrees, wrapping 360 to 0.
func (r Rotation) Next() Rotation {
	return (r + 90) % 360
}

func (r Rotation) Valid() bool {
	return r == Rotate0 || r == Rotate90 || r == Rotate180 || r == Rotate270
}

// Radians converts the rotation for drawing APIs.
func (r Rotation) Radians() float64 {
	return float64(r) * math.Pi / 180
}

// TileRef points at a tile of the source image by its top-left pixel offset
// and carries the rotation it is drawn with.
type TileRef struct {
	SourceX  int
	SourceY  int
	Rotation Rotation
}

// Origin returns the source offset as a point.
func (t TileRef) Origin() image.Point {
	return image.Pt(t.SourceX, t.SourceY)
}

// SourceRect is the rectangle of the source image the tile is cut from.
func (t TileRef) SourceRect(tileSize int) image.Rectangle {
	return image.Rect(t.SourceX, t.SourceY, t.SourceX+tileSize, t.SourceY+tileSize)
}

// CellCoord addresses one grid cell.
type CellCoord struct {
	Row int
	Col int
}

// String renders the cell as "<row>-<col>", the key used by saved documents.
func (c CellCoord) String() string {
	return strconv.Itoa(c.Row) + "-" + strconv.Itoa(c.Col)
}

// ParseCellCoord parses the "<row>-<col>" form produced by String. Only the
// canonical form of non-negative coordinates is accepted, so parsing and
// printing are inverse operations.
func ParseCellCoord(s string) (CellCoord, error) {
	rs, cs, ok := strings.Cut(s, "-")
	if !ok {
		return CellCoord{}, fmt.Errorf("tilemap: cell key %q: missing separator", s)
	}
	row, err := strconv.Atoi(rs)
	if err != nil {
		return CellCoord{}, fmt.Errorf("tilemap: cell key %q: row: %w", s, err)
	}
	col, err := strconv.Atoi(cs)
	if err != nil {
		return CellCoord{}, fmt.Errorf("tilemap: cell key %q: col: %w", s, err)
	}
	c := CellCoord{Row: row, Col: col}
	if row < 0 || col < 0 || c.String() != s {
		return CellCoord{}, fmt.Errorf("tilemap: cell key %q: not canonical", s)
	}
	return c, nil
}

// SourceImage is the uploaded sprite sheet as an opaque encoded payload.
type SourceImage struct {
	MediaType string
	Data      []byte
}

func (s SourceImage) Equal(o SourceImage) bool {
	return s.MediaType == o.MediaType && bytes.Equal(s.Data, o.Data)
}
