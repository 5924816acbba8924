// Package assets holds the embedded default sprite sheet and decodes
// uploaded sheets of any supported format.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/tilepaint/tilemap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

//go:embed *.png
var assetsFS embed.FS

// DefaultSheetName is the sheet shipped with the editor.
const DefaultSheetName = "sheet.png"

// DefaultSheet returns the embedded sheet as an encoded payload.
func DefaultSheet() (tilemap.SourceImage, error) {
	b, err := LoadFile(DefaultSheetName)
	if err != nil {
		return tilemap.SourceImage{}, err
	}
	return FromBytes(b)
}

// LoadFile loads an embedded asset by assets-relative path.
func LoadFile(path string) ([]byte, error) {
	return assetsFS.ReadFile(cleanAssetPath(path))
}

// FromBytes sniffs the image format of b and wraps it as a SourceImage.
func FromBytes(b []byte) (tilemap.SourceImage, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return tilemap.SourceImage{}, fmt.Errorf("sniff image: %w", err)
	}
	return tilemap.SourceImage{MediaType: "image/" + format, Data: b}, nil
}

// FromFile reads an image from disk.
func FromFile(path string) (tilemap.SourceImage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return tilemap.SourceImage{}, fmt.Errorf("read image %q: %w", path, err)
	}
	img, err := FromBytes(b)
	if err != nil {
		return tilemap.SourceImage{}, fmt.Errorf("%q: %w", path, err)
	}
	return img, nil
}

// Decode turns an encoded payload into pixels. The media type is advisory;
// the format is detected from the data.
func Decode(src tilemap.SourceImage) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.MediaType, err)
	}
	return img, nil
}

func cleanAssetPath(path string) string {
	s := filepath.ToSlash(path)
	if filepath.IsAbs(path) {
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	return strings.TrimPrefix(s, "assets/")
}
