package tilemap

import "image"

// Selection is the tile chosen from the source image and the rotation it
// will be placed with. It stays set until another tile is picked.
type Selection struct {
	ref    TileRef
	active bool
}

// Select replaces the selection with the tile at origin and resets the
// rotation.
func (s *Selection) Select(origin image.Point) {
	s.ref = TileRef{SourceX: origin.X, SourceY: origin.Y, Rotation: Rotate0}
	s.active = true
}

// Rotate advances the pending rotation. It does nothing without a selection.
func (s *Selection) Rotate() bool {
	if !s.active {
		return false
	}
	s.ref.Rotation = s.ref.Rotation.Next()
	return true
}

func (s *Selection) Current() (TileRef, bool) {
	return s.ref, s.active
}

func (s *Selection) Active() bool { return s.active }
