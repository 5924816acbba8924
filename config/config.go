// Package config loads editor settings from YAML.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/milk9111/tilepaint/levels"
	"github.com/milk9111/tilepaint/render"
	"github.com/milk9111/tilepaint/tilemap"
	"gopkg.in/yaml.v3"
)

// Config is the editor's settings file. Absent fields keep their defaults.
type Config struct {
	TileSize       int     `yaml:"tile_size"`
	GridWidth      int     `yaml:"grid_width"`
	GridHeight     int     `yaml:"grid_height"`
	ShowGrid       bool    `yaml:"show_grid"`
	Background     string  `yaml:"background"`
	GridLine       string  `yaml:"grid_line"`
	PreviewOpacity float64 `yaml:"preview_opacity"`
	// SheetPanelWidth is how wide the sheet is drawn in the left panel.
	SheetPanelWidth int    `yaml:"sheet_panel_width"`
	SavePath        string `yaml:"save_path"`
	// Watch reloads the sheet file whenever it changes on disk.
	Watch bool `yaml:"watch"`
}

func Default() Config {
	return Config{
		TileSize:        tilemap.DefaultTileSize,
		GridWidth:       tilemap.DefaultGridWidth,
		GridHeight:      tilemap.DefaultGridHeight,
		ShowGrid:        true,
		Background:      "#333333",
		GridLine:        "#c8c8c840",
		PreviewOpacity:  0.5,
		SheetPanelWidth: 256,
		SavePath:        levels.DefaultFileName,
	}
}

// Load reads a settings file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Grid().Validate(); err != nil {
		return err
	}
	if c.PreviewOpacity < 0 || c.PreviewOpacity > 1 {
		return fmt.Errorf("preview_opacity %v: must be within [0, 1]", c.PreviewOpacity)
	}
	if c.SheetPanelWidth <= 0 {
		return fmt.Errorf("sheet_panel_width %d: must be positive", c.SheetPanelWidth)
	}
	if _, err := ParseHexColor(c.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if _, err := ParseHexColor(c.GridLine); err != nil {
		return fmt.Errorf("grid_line: %w", err)
	}
	return nil
}

func (c Config) Grid() tilemap.GridConfig {
	return tilemap.GridConfig{TileSize: c.TileSize, GridWidth: c.GridWidth, GridHeight: c.GridHeight}
}

// Style converts the colour settings. Unparseable colours fall back to the
// default style's.
func (c Config) Style() render.Style {
	style := render.DefaultStyle()
	if bg, err := ParseHexColor(c.Background); err == nil {
		style.Background = bg
	}
	if line, err := ParseHexColor(c.GridLine); err == nil {
		style.GridLine = line
	}
	style.PreviewOpacity = c.PreviewOpacity
	return style
}

// ParseHexColor parses "#rgb", "#rgba", "#rrggbb" or "#rrggbbaa". The
// short forms repeat each digit, so "#f80" is "#ff8800". Alpha defaults to
// opaque and the colour is not premultiplied.
func ParseHexColor(v string) (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(v), "#")
	var width int
	switch len(s) {
	case 3, 4:
		width = 1
	case 6, 8:
		width = 2
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color format: %q", v)
	}

	c := [4]uint8{3: 0xff}
	for i, name := range []string{"red", "green", "blue", "alpha"} {
		if (i+1)*width > len(s) {
			break
		}
		n, err := strconv.ParseUint(s[i*width:(i+1)*width], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parse %s component of %q: %w", name, v, err)
		}
		if width == 1 {
			n *= 0x11
		}
		c[i] = uint8(n)
	}
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}
