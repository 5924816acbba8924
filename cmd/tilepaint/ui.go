package main

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/milk9111/tilepaint/tilemap"
)

const panelWidth = 220

// panelActions are the callbacks the settings panel fires.
type panelActions struct {
	onApply      func(cfg tilemap.GridConfig)
	onToggleGrid func()
	onSave       func(path string)
	onLoad       func(path string)
	onOpenSheet  func()
}

// settingsPanel holds the widgets whose state the game reads or updates.
type settingsPanel struct {
	tileSize   *widget.TextInput
	gridWidth  *widget.TextInput
	gridHeight *widget.TextInput
	file       *widget.TextInput
	gridBtn    *widget.Button
}

// SetConfig shows cfg in the number fields.
func (p *settingsPanel) SetConfig(cfg tilemap.GridConfig) {
	p.tileSize.SetText(strconv.Itoa(cfg.TileSize))
	p.gridWidth.SetText(strconv.Itoa(cfg.GridWidth))
	p.gridHeight.SetText(strconv.Itoa(cfg.GridHeight))
}

// Config reads the number fields. Unparseable fields read as 0 so that
// validation rejects them.
func (p *settingsPanel) Config() tilemap.GridConfig {
	atoi := func(in *widget.TextInput) int {
		n, err := strconv.Atoi(strings.TrimSpace(in.GetText()))
		if err != nil {
			return 0
		}
		return n
	}
	return tilemap.GridConfig{
		TileSize:   atoi(p.tileSize),
		GridWidth:  atoi(p.gridWidth),
		GridHeight: atoi(p.gridHeight),
	}
}

func (p *settingsPanel) FilePath() string {
	return strings.TrimSpace(p.file.GetText())
}

func (p *settingsPanel) SetGridVisible(visible bool) {
	label := "Grid: Off"
	if visible {
		label = "Grid: On"
	}
	if t := p.gridBtn.Text(); t != nil {
		t.Label = label
	}
}

func buildUI(cfg tilemap.GridConfig, savePath string, gridVisible bool, actions panelActions) (*ebitenui.UI, *settingsPanel, error) {
	face, err := loadFontFace(14)
	if err != nil {
		return nil, nil, err
	}
	fontFace := &face
	ui := &ebitenui.UI{}
	ui.PrimaryTheme = newPanelTheme(fontFace)
	theme := ui.PrimaryTheme

	panel := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(panelWidth, 400),
		),
		widget.ContainerOpts.BackgroundImage(solidNineSlice(color.RGBA{40, 40, 40, 255})),
		widget.ContainerOpts.Layout(
			widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionVertical),
				widget.RowLayoutOpts.Spacing(8),
			),
		),
	)
	panel.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionEnd,
		VerticalPosition:   widget.AnchorLayoutPositionCenter,
		StretchVertical:    true,
	}

	sp := &settingsPanel{
		tileSize:   newTextInput(fontFace, 180),
		gridWidth:  newTextInput(fontFace, 180),
		gridHeight: newTextInput(fontFace, 180),
		file:       newTextInput(fontFace, 180),
	}
	sp.SetConfig(cfg)
	sp.file.SetText(savePath)

	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(theme.ButtonTheme.Image),
			widget.ButtonOpts.Text(label, fontFace, theme.ButtonTheme.TextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(180, 28)),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				if onClick != nil {
					onClick()
				}
			}),
		)
	}

	panel.AddChild(newLabel(fontFace, "Tile size"))
	panel.AddChild(sp.tileSize)
	panel.AddChild(newLabel(fontFace, "Grid width"))
	panel.AddChild(sp.gridWidth)
	panel.AddChild(newLabel(fontFace, "Grid height"))
	panel.AddChild(sp.gridHeight)
	panel.AddChild(button("Apply", func() {
		if actions.onApply != nil {
			actions.onApply(sp.Config())
		}
	}))
	sp.gridBtn = button("Grid: On", actions.onToggleGrid)
	sp.SetGridVisible(gridVisible)
	panel.AddChild(sp.gridBtn)

	panel.AddChild(newLabel(fontFace, "File"))
	panel.AddChild(sp.file)
	panel.AddChild(button("Save", func() {
		if actions.onSave != nil {
			actions.onSave(sp.FilePath())
		}
	}))
	panel.AddChild(button("Load", func() {
		if actions.onLoad != nil {
			actions.onLoad(sp.FilePath())
		}
	}))
	panel.AddChild(button("Open sheet", actions.onOpenSheet))

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	ui.Container = root
	return ui, sp, nil
}

// helpText is drawn under the grid.
func helpText() string {
	return strings.Join([]string{
		"sheet: left pick, right rotate",
		"grid: left paint, right rotate, middle delete",
		"R rotate  G grid  Ctrl+S save  Ctrl+O load  Ctrl+I sheet  Ctrl+C copy",
	}, "\n")
}
