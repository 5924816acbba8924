package tilemap

import "image"

const (
	DefaultTileSize   = 64
	DefaultGridWidth  = 10
	DefaultGridHeight = 10

	// MaxPixelExtent bounds the width and height of the grid in pixels,
	// closing grid line included.
	MaxPixelExtent = 4096
)

// GridConfig describes the destination grid: square tiles of TileSize pixels,
// GridWidth columns and GridHeight rows.
type GridConfig struct {
	TileSize   int
	GridWidth  int
	GridHeight int
}

// DefaultGridConfig returns a 10x10 grid of 64 pixel tiles.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		TileSize:   DefaultTileSize,
		GridWidth:  DefaultGridWidth,
		GridHeight: DefaultGridHeight,
	}
}

// Validate reports the first non-positive field, or the first dimension that
// makes the grid larger than MaxPixelExtent, as an *InvalidConfigError.
func (c GridConfig) Validate() error {
	switch {
	case c.TileSize <= 0:
		return &InvalidConfigError{Field: "tile size", Value: c.TileSize}
	case c.GridWidth <= 0:
		return &InvalidConfigError{Field: "grid width", Value: c.GridWidth}
	case c.GridHeight <= 0:
		return &InvalidConfigError{Field: "grid height", Value: c.GridHeight}
	}
	// divide rather than multiply so huge values cannot overflow
	limit := (MaxPixelExtent - 1) / c.TileSize
	switch {
	case limit == 0:
		return &InvalidConfigError{Field: "tile size", Value: c.TileSize, Max: MaxPixelExtent - 1}
	case c.GridWidth > limit:
		return &InvalidConfigError{Field: "grid width", Value: c.GridWidth, Max: limit}
	case c.GridHeight > limit:
		return &InvalidConfigError{Field: "grid height", Value: c.GridHeight, Max: limit}
	}
	return nil
}

// WithDefaults replaces every non-positive field with its default.
func (c GridConfig) WithDefaults() GridConfig {
	if c.TileSize <= 0 {
		c.TileSize = DefaultTileSize
	}
	if c.GridWidth <= 0 {
		c.GridWidth = DefaultGridWidth
	}
	if c.GridHeight <= 0 {
		c.GridHeight = DefaultGridHeight
	}
	return c
}

// Contains reports whether cell lies inside the grid.
func (c GridConfig) Contains(cell CellCoord) bool {
	return cell.Row >= 0 && cell.Col >= 0 && cell.Row < c.GridHeight && cell.Col < c.GridWidth
}

// CellRect returns the pixel rectangle covered by cell.
func (c GridConfig) CellRect(cell CellCoord) image.Rectangle {
	x := cell.Col * c.TileSize
	y := cell.Row * c.TileSize
	return image.Rect(x, y, x+c.TileSize, y+c.TileSize)
}

// PixelSize is the size of a surface that holds the whole grid, including the
// closing grid line on the right and bottom edges.
func (c GridConfig) PixelSize() image.Point {
	return image.Pt(c.GridWidth*c.TileSize+1, c.GridHeight*c.TileSize+1)
}
