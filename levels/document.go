package levels

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/milk9111/tilepaint/tilemap"
)

// DefaultFileName is the name a saved grid is written under when none is given.
const DefaultFileName = "tilemap-grid.json"

// ErrDocumentFormat matches every *DocumentFormatError with errors.Is.
var ErrDocumentFormat = errors.New("levels: malformed document")

// DocumentFormatError reports a saved document that cannot be read back.
type DocumentFormatError struct {
	Reason string
	Err    error
}

func (e *DocumentFormatError) Error() string {
	if e.Err == nil {
		return "levels: " + e.Reason
	}
	return fmt.Sprintf("levels: %s: %v", e.Reason, e.Err)
}

func (e *DocumentFormatError) Unwrap() error { return e.Err }

func (e *DocumentFormatError) Is(target error) bool { return target == ErrDocumentFormat }

// TileData is one placed tile as saved on disk.
type TileData struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	Rotation int `json:"rotation"`
}

// Document is the saved file format. Cell keys are "<row>-<col>" and the
// sheet is embedded as a data URL so a document stands on its own.
type Document struct {
	GridWidth   int                 `json:"gridWidth"`
	GridHeight  int                 `json:"gridHeight"`
	TileSize    int                 `json:"tileSize"`
	TilemapData string              `json:"tilemapData,omitempty"`
	GridData    map[string]TileData `json:"gridData"`
}

// State is what a document restores into an editor.
type State struct {
	Config tilemap.GridConfig
	// Image is nil when the document carries no sheet.
	Image *tilemap.SourceImage
	Tiles *tilemap.Store
	// Dropped counts saved tiles that fell outside the grid and were skipped.
	Dropped int
}

// Encode flattens an editor state into a Document.
func Encode(cfg tilemap.GridConfig, img *tilemap.SourceImage, tiles *tilemap.Store) Document {
	doc := Document{
		GridWidth:  cfg.GridWidth,
		GridHeight: cfg.GridHeight,
		TileSize:   cfg.TileSize,
		GridData:   make(map[string]TileData, tiles.Len()),
	}
	if img != nil {
		doc.TilemapData = EncodeDataURL(*img)
	}
	tiles.Each(func(cell tilemap.CellCoord, ref tilemap.TileRef) {
		doc.GridData[cell.String()] = TileData{X: ref.SourceX, Y: ref.SourceY, Rotation: int(ref.Rotation)}
	})
	return doc
}

// Marshal writes doc as indented JSON. Map keys come out sorted, so equal
// states always produce identical bytes.
func Marshal(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// Decode parses a saved document. Absent or non-positive dimensions fall
// back to the defaults (tile size 64, 10x10 grid); a missing gridData is an
// empty grid. Tiles outside the grid are dropped and counted in
// State.Dropped. Dimensions too large to draw and anything else that cannot
// be understood are a *DocumentFormatError.
func Decode(data []byte) (State, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, &DocumentFormatError{Reason: "invalid JSON", Err: err}
	}
	return FromDocument(doc)
}

// FromDocument converts an already parsed Document.
func FromDocument(doc Document) (State, error) {
	st := State{
		Config: tilemap.GridConfig{
			TileSize:   doc.TileSize,
			GridWidth:  doc.GridWidth,
			GridHeight: doc.GridHeight,
		}.WithDefaults(),
		Tiles: tilemap.NewStore(),
	}
	if err := st.Config.Validate(); err != nil {
		return State{}, &DocumentFormatError{Reason: "grid dimensions", Err: err}
	}

	if doc.TilemapData != "" {
		img, err := DecodeDataURL(doc.TilemapData)
		if err != nil {
			return State{}, &DocumentFormatError{Reason: "tilemapData", Err: err}
		}
		st.Image = &img
	}

	for key, td := range doc.GridData {
		cell, err := tilemap.ParseCellCoord(key)
		if err != nil {
			return State{}, &DocumentFormatError{Reason: "gridData key", Err: err}
		}
		if td.X < 0 || td.Y < 0 {
			return State{}, &DocumentFormatError{Reason: fmt.Sprintf("gridData %q: negative source offset %d,%d", key, td.X, td.Y)}
		}
		rot, ok := tilemap.NormalizeRotation(td.Rotation)
		if !ok {
			return State{}, &DocumentFormatError{Reason: fmt.Sprintf("gridData %q: rotation %d is not a quarter turn", key, td.Rotation)}
		}
		if !st.Config.Contains(cell) {
			st.Dropped++
			continue
		}
		st.Tiles.Set(cell, tilemap.TileRef{SourceX: td.X, SourceY: td.Y, Rotation: rot})
	}
	return st, nil
}
