package native

import "github.com/cockroachdb/errors"

// Errors reported by pointer operations.
var (
	// ErrInvalidSize indicates a non-positive allocation size.
	ErrInvalidSize = errors.New("invalid allocation size")

	// ErrReleased indicates access to a pointer after its memory was freed.
	ErrReleased = errors.New("native memory already released")

	// ErrOutOfBounds indicates an access outside the allocation.
	ErrOutOfBounds = errors.New("native access out of bounds")
)
