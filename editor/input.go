package editor

import "github.com/milk9111/tilepaint/tilemap"

// Button identifies the pointer button of an event.
type Button int

const (
	// ButtonPrimary paints.
	ButtonPrimary Button = iota
	// ButtonSecondary rotates the placed tile.
	ButtonSecondary
	// ButtonMiddle deletes.
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonSecondary:
		return "secondary"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// PointerDown handles a press over the grid at p. The primary button starts
// a paint gesture.
func (s *Session) PointerDown(b Button, p tilemap.Vec) {
	cell := s.CellAt(p)
	s.hover, s.hovering = cell, true
	switch b {
	case ButtonPrimary:
		s.painting = true
		s.hasPainted = false
		s.preview.Clear()
		s.Place(cell)
	case ButtonSecondary:
		s.RotateAt(cell)
	case ButtonMiddle:
		s.DeleteAt(cell)
	}
}

// PointerMove paints while a gesture is active and otherwise moves the
// preview.
func (s *Session) PointerMove(p tilemap.Vec) {
	cell := s.CellAt(p)
	if s.painting {
		s.hover, s.hovering = cell, true
		s.Place(cell)
		return
	}
	if s.hovering && s.hover == cell {
		return
	}
	s.hover, s.hovering = cell, true
	s.refreshPreview()
}

// PointerUp ends the paint gesture when the primary button is released.
func (s *Session) PointerUp(b Button) {
	if b != ButtonPrimary || !s.painting {
		return
	}
	s.endGesture()
	s.refreshPreview()
}

// PointerLeave hides the preview when the pointer leaves the grid.
func (s *Session) PointerLeave() {
	s.hovering = false
	s.preview.Clear()
}

func (s *Session) endGesture() {
	s.painting = false
	s.hasPainted = false
}
