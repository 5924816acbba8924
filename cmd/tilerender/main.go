// Command tilerender draws a saved grid to a PNG without opening a window.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"

	"github.com/milk9111/tilepaint/assets"
	"github.com/milk9111/tilepaint/config"
	"github.com/milk9111/tilepaint/editor"
	"github.com/milk9111/tilepaint/levels"
	"github.com/milk9111/tilepaint/render"
)

func main() {
	in := flag.String("in", "", "saved grid to render (defaults to the built-in sample)")
	out := flag.String("out", "grid.png", "PNG file to write, or - for stdout")
	sheet := flag.String("sheet", "", "sheet image to use when the grid has none embedded")
	configPath := flag.String("config", "", "optional settings file for colours")
	lines := flag.Bool("lines", true, "draw grid lines")
	flag.Parse()

	if err := run(*in, *out, *sheet, *configPath, *lines); err != nil {
		log.Fatalf("tilerender: %v", err)
	}
}

func run(in, out, sheetPath, configPath string, lines bool) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	data, err := readDocument(in)
	if err != nil {
		return err
	}
	session, err := editor.New(cfg.Grid(), render.NewRGBASurface,
		editor.WithStyle(cfg.Style()),
		editor.WithGridVisible(lines),
		editor.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}
	if err := session.OpenDocument(data); err != nil {
		return fmt.Errorf("open grid: %w", err)
	}
	if !session.SheetReady() {
		src, err := assets.DefaultSheet()
		if sheetPath != "" {
			src, err = assets.FromFile(sheetPath)
		}
		if err != nil {
			return err
		}
		if err := session.LoadImage(src); err != nil {
			return err
		}
	}

	img := image.NewRGBA(session.Grid().Bounds())
	render.Flatten(img, asImage(session.Grid()), asImage(session.Lines()))
	return writePNG(out, img)
}

func readDocument(path string) ([]byte, error) {
	if path == "" {
		return levels.LevelsFS.ReadFile(levels.SampleName)
	}
	return os.ReadFile(path)
}

func asImage(s render.Surface) image.Image {
	if rgba, ok := s.(*render.RGBA); ok {
		return rgba.RGBA
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	if path == "-" {
		return encodePNG(os.Stdout, img)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func encodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
