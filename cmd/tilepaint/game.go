package main

import (
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/tilepaint/assets"
	"github.com/milk9111/tilepaint/config"
	"github.com/milk9111/tilepaint/editor"
	"github.com/milk9111/tilepaint/levels"
	"github.com/milk9111/tilepaint/tilemap"
)

const pad = 16

// Game is the ebiten front end of an editor.Session: the sheet on the left,
// the grid in the middle and the settings panel on the right.
type Game struct {
	session *editor.Session
	cfg     config.Config
	sheets  *sheetCache
	loader  *loader
	ui      *ebitenui.UI
	panel   *settingsPanel
	prompt  Prompt
	clip    *clipboardWriter

	sheetPath string
	overGrid  bool
	status    string
	width     int
	height    int
}

func NewGame(cfg config.Config, session *editor.Session, sheets *sheetCache) (*Game, error) {
	g := &Game{
		session: session,
		cfg:     cfg,
		sheets:  sheets,
		loader:  newLoader(),
		clip:    newClipboardWriter(),
	}
	ui, panel, err := buildUI(session.Config(), cfg.SavePath, session.GridVisible(), panelActions{
		onApply:      g.applySettings,
		onToggleGrid: g.toggleGrid,
		onSave:       g.save,
		onLoad:       g.load,
		onOpenSheet:  g.promptSheet,
	})
	if err != nil {
		return nil, fmt.Errorf("build ui: %w", err)
	}
	g.ui = ui
	g.panel = panel
	return g, nil
}

// OpenSheet replaces the sheet with the image file at path.
func (g *Game) OpenSheet(path string) {
	src, err := assets.FromFile(path)
	if err != nil {
		g.setStatus("Open sheet failed: %v", err)
		return
	}
	g.loader.decode(g.session.RequestImage(src))
	g.sheetPath = path
	if g.cfg.Watch {
		g.loader.watch(path)
	}
	g.setStatus("Opened sheet %s", path)
}

// OpenEmbeddedSheet loads the sheet shipped with the binary.
func (g *Game) OpenEmbeddedSheet() {
	src, err := assets.DefaultSheet()
	if err != nil {
		g.setStatus("Default sheet failed: %v", err)
		return
	}
	g.loader.decode(g.session.RequestImage(src))
}

func (g *Game) Update() error {
	g.loader.drain(g.session)
	if g.loader.changed() && g.sheetPath != "" {
		log.Printf("Sheet %s changed, reloading", g.sheetPath)
		g.OpenSheet(g.sheetPath)
	}

	if g.prompt.Update() {
		return nil
	}

	// If the UI has a focused text widget (user is typing), suppress hotkeys.
	suppressHotkeys := false
	if fw := g.ui.GetFocusedWidget(); fw != nil {
		if _, ok := fw.(*widget.TextInput); ok {
			suppressHotkeys = true
		}
	}
	g.ui.Update()

	if !suppressHotkeys {
		g.handleHotkeys()
	}
	g.handlePointer()
	return nil
}

func ctrlPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
}

func (g *Game) handleHotkeys() {
	ctrl := ctrlPressed()
	switch {
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.save(g.panel.FilePath())
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.prompt.Open("Load grid:", g.panel.FilePath(), g.load)
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyI):
		g.promptSheet()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyDocument()
	case !ctrl && inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.session.RotateSelection()
	case !ctrl && inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.toggleGrid()
	}
}

func (g *Game) handlePointer() {
	mx, my := ebiten.CursorPosition()
	p := tilemap.Vec{X: float64(mx), Y: float64(my)}
	if mx >= g.width-panelWidth {
		g.leaveGrid()
		if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
			g.session.PointerUp(editor.ButtonPrimary)
		}
		return
	}

	if box, ok := g.sheetBox(); ok && box.Contains(p) {
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.session.PickTile(p, box)
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
			g.session.RotateSelection()
		}
	}

	origin := g.gridOrigin()
	g.session.SetGridOrigin(origin)
	size := g.session.Config().PixelSize()
	gridBox := tilemap.Box{X: origin.X, Y: origin.Y, W: float64(size.X), H: float64(size.Y)}
	inGrid := gridBox.Contains(p)

	switch {
	case inGrid && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.session.PointerDown(editor.ButtonPrimary, p)
	case inGrid && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
		g.session.PointerDown(editor.ButtonSecondary, p)
	case inGrid && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle):
		g.session.PointerDown(editor.ButtonMiddle, p)
	case inGrid || g.session.Painting():
		g.session.PointerMove(p)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.session.PointerUp(editor.ButtonPrimary)
	}
	if inGrid {
		g.overGrid = true
	} else {
		g.leaveGrid()
	}
}

func (g *Game) leaveGrid() {
	if g.overGrid {
		g.session.PointerLeave()
		g.overGrid = false
	}
}

// sheetBox is where the sheet is drawn: scaled to the panel width, keeping
// its aspect ratio.
func (g *Game) sheetBox() (tilemap.Box, bool) {
	size := g.session.SheetSize()
	if size.X <= 0 || size.Y <= 0 {
		return tilemap.Box{}, false
	}
	w := float64(g.cfg.SheetPanelWidth)
	return tilemap.Box{X: pad, Y: pad, W: w, H: w * float64(size.Y) / float64(size.X)}, true
}

func (g *Game) gridOrigin() tilemap.Vec {
	return tilemap.Vec{X: float64(2*pad + g.cfg.SheetPanelWidth), Y: pad}
}

func (g *Game) applySettings(cfg tilemap.GridConfig) {
	if err := g.session.ApplySettings(cfg); err != nil {
		g.setStatus("Settings rejected: %v", err)
		g.panel.SetConfig(g.session.Config())
		return
	}
	g.setStatus("Grid is now %dx%d at %dpx", cfg.GridWidth, cfg.GridHeight, cfg.TileSize)
}

func (g *Game) toggleGrid() {
	g.session.ToggleGrid()
	g.panel.SetGridVisible(g.session.GridVisible())
}

func (g *Game) save(path string) {
	if path == "" {
		path = levels.DefaultFileName
	}
	if err := levels.WriteFile(path, g.session.Document()); err != nil {
		g.setStatus("Save failed: %v", err)
		return
	}
	g.setStatus("Saved grid: %s", path)
}

func (g *Game) load(path string) {
	if path == "" {
		path = levels.DefaultFileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		g.setStatus("Load failed: %v", err)
		return
	}
	req, err := g.session.LoadDocument(data)
	if err != nil {
		g.setStatus("Load failed: %v", err)
		return
	}
	if req != nil {
		g.loader.stopWatching()
		g.sheetPath = ""
		g.loader.decode(*req)
	}
	g.panel.SetConfig(g.session.Config())
	g.setStatus("Loaded grid: %s", path)
}

func (g *Game) promptSheet() {
	g.prompt.Open("Sheet image:", g.sheetPath, g.OpenSheet)
}

func (g *Game) copyDocument() {
	data, err := g.session.Save()
	if err != nil {
		g.setStatus("Copy failed: %v", err)
		return
	}
	if err := g.clip.Write(data); err != nil {
		g.setStatus("Copy failed: %v", err)
		return
	}
	g.setStatus("Copied grid to clipboard")
}

func (g *Game) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	log.Println(g.status)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{24, 24, 24, 255})

	if box, ok := g.sheetBox(); ok {
		sheet := g.sheets.get(g.session.Sheet())
		op := &ebiten.DrawImageOptions{}
		op.Filter = ebiten.FilterNearest
		size := g.session.SheetSize()
		op.GeoM.Scale(box.W/float64(size.X), box.H/float64(size.Y))
		op.GeoM.Translate(box.X, box.Y)
		screen.DrawImage(sheet, op)
		if r, ok := g.session.SelectionRect(); ok {
			vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 2, color.RGBA{R: 255, G: 220, B: 80, A: 255}, false)
		}
	}

	origin := g.gridOrigin()
	for _, s := range [...]*surface{
		g.session.Grid().(*surface),
		g.session.Lines().(*surface),
		g.session.Preview().(*surface),
	} {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(origin.X, origin.Y)
		screen.DrawImage(s.Image(), op)
	}

	size := g.session.Config().PixelSize()
	y := int(origin.Y) + size.Y + 8
	ebitenutil.DebugPrintAt(screen, helpText(), int(origin.X), y)
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, int(origin.X), y+52)
	}

	g.ui.Draw(screen)
	g.prompt.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
