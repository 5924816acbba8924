package levels

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/tilepaint/tilemap"
)

// EncodeDataURL renders img as "data:<media type>;base64,<payload>".
func EncodeDataURL(img tilemap.SourceImage) string {
	return "data:" + img.MediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// DecodeDataURL parses the base64 data URLs EncodeDataURL produces.
func DecodeDataURL(s string) (tilemap.SourceImage, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return tilemap.SourceImage{}, errors.New("not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return tilemap.SourceImage{}, errors.New("data URL has no payload separator")
	}
	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return tilemap.SourceImage{}, errors.New("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return tilemap.SourceImage{}, fmt.Errorf("data URL payload: %w", err)
	}
	return tilemap.SourceImage{MediaType: mediaType, Data: data}, nil
}
