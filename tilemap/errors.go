package tilemap

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig matches every *InvalidConfigError with errors.Is.
var ErrInvalidConfig = errors.New("tilemap: invalid config")

// InvalidConfigError is returned for a tile size or grid dimension that is
// not positive or that makes the grid too large. Max is the largest
// accepted value in the second case and zero in the first.
type InvalidConfigError struct {
	Field string
	Value int
	Max   int
}

func (e *InvalidConfigError) Error() string {
	if e.Max > 0 {
		return fmt.Sprintf("tilemap: invalid %s %d: at most %d fits in %d pixels", e.Field, e.Value, e.Max, MaxPixelExtent)
	}
	return fmt.Sprintf("tilemap: invalid %s %d: must be positive", e.Field, e.Value)
}

func (e *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
