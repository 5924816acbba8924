package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/tilepaint/config"
	"github.com/milk9111/tilepaint/editor"
)

func main() {
	configPath := flag.String("config", "tilepaint.yaml", "editor settings file (YAML)")
	sheetPath := flag.String("sheet", "", "sprite sheet image to open (defaults to the built-in sheet)")
	docPath := flag.String("load", "", "saved grid to open at startup")
	savePath := flag.String("save", "", "where Save writes the grid (overrides the settings file)")
	watchSheet := flag.Bool("watch", false, "reload the sheet when the file changes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if *savePath != "" {
		cfg.SavePath = *savePath
	}
	if *watchSheet {
		cfg.Watch = true
	}

	sheets := &sheetCache{}
	session, err := editor.New(cfg.Grid(), newSurfaceFactory(sheets),
		editor.WithStyle(cfg.Style()),
		editor.WithGridVisible(cfg.ShowGrid),
		editor.WithLogger(log.Default()),
	)
	if err != nil {
		log.Fatalf("Failed to start editor: %v", err)
	}

	game, err := NewGame(cfg, session, sheets)
	if err != nil {
		log.Fatalf("Failed to build editor: %v", err)
	}
	if *sheetPath != "" {
		game.OpenSheet(*sheetPath)
	} else {
		game.OpenEmbeddedSheet()
	}
	if *docPath != "" {
		if _, err := os.Stat(*docPath); err != nil {
			log.Fatalf("Failed to open grid: %v", err)
		}
		game.load(*docPath)
	}

	log.Println("Editor starting...")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 800)
	ebiten.SetWindowTitle("tilepaint")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
