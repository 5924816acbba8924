package editor

import (
	"errors"
	"fmt"
	"image"

	"github.com/milk9111/tilepaint/assets"
	"github.com/milk9111/tilepaint/levels"
	"github.com/milk9111/tilepaint/tilemap"
)

// ErrStaleLoad is returned by CompleteImage for a token that has been
// superseded by a newer request.
var ErrStaleLoad = errors.New("editor: stale image load")

// LoadToken orders image requests. Only the most recently issued token is
// honoured on completion.
type LoadToken uint64

// ImageRequest is a sheet payload waiting to be decoded.
type ImageRequest struct {
	Token  LoadToken
	Source tilemap.SourceImage
}

// RequestImage starts replacing the sheet with src. The caller decodes
// src.Data, possibly on another goroutine, and hands the result back to
// CompleteImage on the UI loop.
func (s *Session) RequestImage(src tilemap.SourceImage) ImageRequest {
	s.latest++
	s.pending = &src
	return ImageRequest{Token: s.latest, Source: src}
}

// CompleteImage installs a decoded sheet. Completions for any token but the
// latest return ErrStaleLoad and change nothing. A decode error is returned
// wrapped and the previous sheet stays active. On success every placed tile
// is redrawn against the new sheet; their source offsets are kept as they
// are.
func (s *Session) CompleteImage(token LoadToken, img image.Image, err error) error {
	if token != s.latest || s.pending == nil {
		return fmt.Errorf("token %d, latest %d: %w", token, s.latest, ErrStaleLoad)
	}
	src := s.pending
	s.pending = nil
	if err != nil {
		return fmt.Errorf("load sheet: %w", err)
	}
	if img == nil {
		return errors.New("load sheet: no image")
	}
	s.source = src
	s.natural = img.Bounds().Size()
	s.comp.SetSheet(img)
	s.redraw()
	return nil
}

// LoadImage requests and decodes src on the calling goroutine.
func (s *Session) LoadImage(src tilemap.SourceImage) error {
	req := s.RequestImage(src)
	img, err := assets.Decode(req.Source)
	return s.CompleteImage(req.Token, img, err)
}

// LoadDocument restores a saved document. A malformed document returns a
// *levels.DocumentFormatError and leaves the session untouched. When the
// document carries its own sheet the current one is unloaded and the
// returned request must be completed before anything is drawn; otherwise
// the current sheet is kept and the request is nil.
//
// The document's sheet payload becomes Source straight away, so saving
// before the decode finishes, or after it fails, writes it back unchanged.
// A sheet that fails to decode leaves the session with the document's grid
// and tiles but nothing drawable until another sheet loads.
func (s *Session) LoadDocument(data []byte) (*ImageRequest, error) {
	st, err := levels.Decode(data)
	if err != nil {
		return nil, err
	}
	if st.Dropped > 0 {
		s.log.Printf("dropped %d saved tiles outside the %dx%d grid", st.Dropped, st.Config.GridWidth, st.Config.GridHeight)
	}

	s.cfg = st.Config
	s.comp.SetConfig(st.Config)
	s.tiles = st.Tiles
	s.endGesture()
	s.hovering = false
	s.resizeSurfaces()

	var req *ImageRequest
	if st.Image != nil {
		r := s.RequestImage(*st.Image)
		req = &r
		s.source = st.Image
		s.natural = image.Point{}
		s.comp.SetSheet(nil)
	}
	s.redraw()
	return req, nil
}

// OpenDocument is LoadDocument with the sheet decoded on the calling
// goroutine.
func (s *Session) OpenDocument(data []byte) error {
	req, err := s.LoadDocument(data)
	if err != nil || req == nil {
		return err
	}
	img, err := assets.Decode(req.Source)
	return s.CompleteImage(req.Token, img, err)
}

// Document snapshots the session in its saved form.
func (s *Session) Document() levels.Document {
	return levels.Encode(s.cfg, s.source, s.tiles)
}

// Save renders the session as JSON.
func (s *Session) Save() ([]byte, error) {
	return levels.Marshal(s.Document())
}
