// Package editor owns a tile painting session: the grid settings, the
// placed tiles, the current selection and the surfaces they are drawn on.
// A UI translates its events into calls on Controller and draws the
// surfaces; the session itself never touches a window.
package editor

import (
	"fmt"
	"image"
	"log"

	"github.com/milk9111/tilepaint/render"
	"github.com/milk9111/tilepaint/tilemap"
)

// Logger is the printf style sink the session reports through.
type Logger interface {
	Printf(format string, v ...any)
}

// Controller is the full set of operations a UI drives a session with.
type Controller interface {
	SetGridOrigin(origin tilemap.Vec)
	PickTile(pointer tilemap.Vec, displayed tilemap.Box) bool
	RotateSelection() bool
	PointerDown(b Button, p tilemap.Vec)
	PointerMove(p tilemap.Vec)
	PointerUp(b Button)
	PointerLeave()
	ApplySettings(cfg tilemap.GridConfig) error
	SetGridVisible(visible bool)
	RequestImage(src tilemap.SourceImage) ImageRequest
	CompleteImage(token LoadToken, img image.Image, err error) error
	LoadDocument(data []byte) (*ImageRequest, error)
	Save() ([]byte, error)
}

var _ Controller = (*Session)(nil)

type Option func(*Session)

func WithLogger(l Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithStyle(style render.Style) Option {
	return func(s *Session) { s.style = style }
}

// WithGridVisible sets whether grid lines start out drawn. Defaults to true.
func WithGridVisible(visible bool) Option {
	return func(s *Session) { s.gridVisible = visible }
}

// Session is a single editing session. It is not safe for concurrent use;
// every method is expected to run on the UI loop.
type Session struct {
	cfg     tilemap.GridConfig
	style   render.Style
	comp    *render.Compositor
	factory render.SurfaceFactory
	log     Logger

	grid    render.Surface
	lines   render.Surface
	preview render.Surface

	tiles *tilemap.Store
	sel   tilemap.Selection

	source    *tilemap.SourceImage
	natural   image.Point
	displayed tilemap.Box

	// latest is the token of the most recent image request; pending holds
	// its payload until the decode completes.
	latest  LoadToken
	pending *tilemap.SourceImage

	gridVisible bool
	origin      tilemap.Vec

	painting    bool
	lastPainted tilemap.CellCoord
	hasPainted  bool
	hover       tilemap.CellCoord
	hovering    bool
}

// New creates a session with an empty grid. No sheet is loaded, so nothing
// is drawn until an image request completes.
func New(cfg tilemap.GridConfig, factory render.SurfaceFactory, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		factory = render.NewRGBASurface
	}
	s := &Session{
		cfg:         cfg,
		style:       render.DefaultStyle(),
		factory:     factory,
		log:         log.Default(),
		tiles:       tilemap.NewStore(),
		gridVisible: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.comp = render.NewCompositor(cfg, s.style)
	s.resizeSurfaces()
	return s, nil
}

func (s *Session) Config() tilemap.GridConfig { return s.cfg }

// Tiles returns a snapshot of the placed tiles.
func (s *Session) Tiles() *tilemap.Store { return s.tiles.Clone() }

func (s *Session) Selection() (tilemap.TileRef, bool) { return s.sel.Current() }

func (s *Session) Grid() render.Surface    { return s.grid }
func (s *Session) Lines() render.Surface   { return s.lines }
func (s *Session) Preview() render.Surface { return s.preview }

func (s *Session) GridVisible() bool { return s.gridVisible }

// SheetReady reports whether a sheet has finished loading.
func (s *Session) SheetReady() bool { return s.comp.Ready() }

// Sheet returns the decoded sheet, or nil before one has loaded.
func (s *Session) Sheet() image.Image { return s.comp.Sheet() }

// Source returns the sheet payload that Save writes, or nil. After a
// document load it is the document's sheet even while that is still decoding.
func (s *Session) Source() *tilemap.SourceImage { return s.source }

// SheetSize is the natural size of the loaded sheet.
func (s *Session) SheetSize() image.Point { return s.natural }

// Painting reports whether a paint gesture is in progress.
func (s *Session) Painting() bool { return s.painting }

// SetGridOrigin sets where the grid surface's top-left corner sits in the
// pointer's coordinate space.
func (s *Session) SetGridOrigin(origin tilemap.Vec) { s.origin = origin }

// CellAt maps a pointer position to a grid cell. The cell may be out of
// bounds.
func (s *Session) CellAt(p tilemap.Vec) tilemap.CellCoord {
	return tilemap.PointerToCell(p, s.origin, s.cfg.TileSize)
}

// PickTile selects the sheet tile under pointer, where displayed is the box
// the sheet is currently drawn in. The selection's rotation resets to 0.
func (s *Session) PickTile(pointer tilemap.Vec, displayed tilemap.Box) bool {
	if !s.comp.Ready() {
		return false
	}
	origin, ok := tilemap.PickSourceTile(pointer, displayed, s.natural, s.cfg.TileSize)
	if !ok {
		return false
	}
	s.sel.Select(origin)
	s.displayed = displayed
	s.refreshPreview()
	return true
}

// SelectionRect is the selected tile's rectangle in the displayed sheet's
// space, for drawing a highlight.
func (s *Session) SelectionRect() (tilemap.Box, bool) {
	ref, ok := s.sel.Current()
	if !ok {
		return tilemap.Box{}, false
	}
	return tilemap.DisplayedTileRect(ref.Origin(), s.displayed, s.natural, s.cfg.TileSize)
}

// RotateSelection turns the selection a quarter turn clockwise. It reports
// false when nothing is selected.
func (s *Session) RotateSelection() bool {
	if !s.sel.Rotate() {
		return false
	}
	s.refreshPreview()
	return true
}

// Place paints the selection into cell. During a paint gesture a cell that
// was just painted is skipped.
func (s *Session) Place(cell tilemap.CellCoord) bool {
	if !s.cfg.Contains(cell) {
		return false
	}
	ref, ok := s.sel.Current()
	if !ok {
		return false
	}
	if s.painting && s.hasPainted && s.lastPainted == cell {
		return false
	}
	s.tiles.Set(cell, ref)
	s.comp.RenderTile(s.grid, cell, ref)
	if s.painting {
		s.lastPainted, s.hasPainted = cell, true
	}
	return true
}

// RotateAt turns the tile placed in cell a quarter turn. Empty cells are
// left alone.
func (s *Session) RotateAt(cell tilemap.CellCoord) bool {
	ref, ok := s.tiles.Rotate(cell)
	if !ok {
		return false
	}
	s.comp.RenderTile(s.grid, cell, ref)
	return true
}

// DeleteAt removes the tile in cell and clears the cell to the background,
// whether or not it held a tile. It reports whether a tile was removed.
func (s *Session) DeleteAt(cell tilemap.CellCoord) bool {
	if !s.cfg.Contains(cell) {
		return false
	}
	removed := s.tiles.Delete(cell)
	s.comp.ClearCell(s.grid, cell)
	s.refreshPreview()
	return removed
}

// RebuildAll repaints every placed tile.
func (s *Session) RebuildAll() bool {
	return s.comp.RebuildAll(s.grid, s.tiles)
}

// ApplySettings switches to cfg. An invalid cfg is rejected with a
// *tilemap.InvalidConfigError and nothing changes. Otherwise tiles that no
// longer fit are dropped and every surface is rebuilt at the new size.
func (s *Session) ApplySettings(cfg tilemap.GridConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	s.comp.SetConfig(cfg)
	if n := s.tiles.Prune(cfg); n > 0 {
		s.log.Printf("dropped %d tiles outside the %dx%d grid", n, cfg.GridWidth, cfg.GridHeight)
	}
	s.endGesture()
	s.hovering = false
	s.resizeSurfaces()
	s.redraw()
	return nil
}

// SetGridVisible shows or hides the grid lines.
func (s *Session) SetGridVisible(visible bool) {
	s.gridVisible = visible
	s.comp.RenderGridOverlay(s.lines, visible)
}

func (s *Session) ToggleGrid() {
	s.SetGridVisible(!s.gridVisible)
}

func (s *Session) redraw() {
	s.comp.RebuildAll(s.grid, s.tiles)
	s.comp.RenderGridOverlay(s.lines, s.gridVisible)
	s.refreshPreview()
}

func (s *Session) resizeSurfaces() {
	size := s.cfg.PixelSize()
	for _, old := range []render.Surface{s.grid, s.lines, s.preview} {
		if d, ok := old.(interface{ Deallocate() }); ok {
			d.Deallocate()
		}
	}
	s.grid = s.factory(size.X, size.Y)
	s.lines = s.factory(size.X, size.Y)
	s.preview = s.factory(size.X, size.Y)
}

// refreshPreview redraws the placement preview at the hovered cell. The
// preview shows only over an empty in-bounds cell, with a selection and no
// paint gesture in progress.
func (s *Session) refreshPreview() {
	s.preview.Clear()
	if !s.hovering || s.painting || !s.cfg.Contains(s.hover) {
		return
	}
	ref, ok := s.sel.Current()
	if !ok {
		return
	}
	if _, occupied := s.tiles.Get(s.hover); occupied {
		return
	}
	s.comp.RenderPreview(s.preview, s.hover, ref)
}

func (s *Session) String() string {
	return fmt.Sprintf("session %dx%d@%d, %d tiles", s.cfg.GridWidth, s.cfg.GridHeight, s.cfg.TileSize, s.tiles.Len())
}
