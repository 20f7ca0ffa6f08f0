package epdpartial

import "errors"

var (
	// ErrInvalidGeometry is returned for a panel whose width is not a
	// positive multiple of 8 or whose height is not positive.
	ErrInvalidGeometry = errors.New("epdpartial: invalid panel geometry")

	// ErrMisalignedRegion is returned when a window's x-bounds are not
	// multiples of 8.
	ErrMisalignedRegion = errors.New("epdpartial: region x-bounds must be multiples of 8")

	// ErrOutOfBounds is returned when a window is empty or not contained in
	// the panel, or when a frame is shorter than the panel.
	ErrOutOfBounds = errors.New("epdpartial: region out of bounds")

	// ErrCallShapeMismatch is returned by a PartialFunc that does not accept
	// the arguments it was called with. The Dispatcher then tries the next
	// call shape.
	ErrCallShapeMismatch = errors.New("epdpartial: partial call shape mismatch")

	// ErrShapesExhausted is returned by the Dispatcher when the entry point
	// rejected every call shape.
	ErrShapesExhausted = errors.New("epdpartial: no partial call shape accepted")
)
