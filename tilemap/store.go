package tilemap

// Store is the sparse set of placed tiles. A cell without an entry is empty.
// The zero value is ready to use.
type Store struct {
	tiles map[CellCoord]TileRef
}

func NewStore() *Store {
	return &Store{tiles: make(map[CellCoord]TileRef)}
}

func (s *Store) Len() int { return len(s.tiles) }

func (s *Store) Get(cell CellCoord) (TileRef, bool) {
	ref, ok := s.tiles[cell]
	return ref, ok
}

// Set inserts or overwrites the tile at cell.
func (s *Store) Set(cell CellCoord, ref TileRef) {
	if s.tiles == nil {
		s.tiles = make(map[CellCoord]TileRef)
	}
	s.tiles[cell] = ref
}

// Delete removes the tile at cell and reports whether there was one.
func (s *Store) Delete(cell CellCoord) bool {
	if _, ok := s.tiles[cell]; !ok {
		return false
	}
	delete(s.tiles, cell)
	return true
}

// Rotate advances the stored rotation at cell by a quarter turn. The source
// offset is left untouched.
func (s *Store) Rotate(cell CellCoord) (TileRef, bool) {
	ref, ok := s.tiles[cell]
	if !ok {
		return TileRef{}, false
	}
	ref.Rotation = ref.Rotation.Next()
	s.tiles[cell] = ref
	return ref, true
}

// Each calls fn for every placed tile in no particular order.
func (s *Store) Each(fn func(cell CellCoord, ref TileRef)) {
	for cell, ref := range s.tiles {
		fn(cell, ref)
	}
}

// Prune drops every tile outside cfg and returns how many were removed.
func (s *Store) Prune(cfg GridConfig) int {
	n := 0
	for cell := range s.tiles {
		if !cfg.Contains(cell) {
			delete(s.tiles, cell)
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	c := &Store{tiles: make(map[CellCoord]TileRef, len(s.tiles))}
	for cell, ref := range s.tiles {
		c.tiles[cell] = ref
	}
	return c
}

func (s *Store) Equal(o *Store) bool {
	if s.Len() != o.Len() {
		return false
	}
	for cell, ref := range s.tiles {
		if other, ok := o.tiles[cell]; !ok || other != ref {
			return false
		}
	}
	return true
}
