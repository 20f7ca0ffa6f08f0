package epdpartial

import (
	"fmt"
	"image"
	"math"
)

// PanelGeometry is the size of a panel in pixels.
type PanelGeometry struct {
	W int // Width, a multiple of 8
	H int // Height
}

// Validate reports whether the geometry can be byte-packed.
func (g PanelGeometry) Validate() error {
	if g.W <= 0 || g.W%8 != 0 || g.H <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, g.W, g.H)
	}
	return nil
}

// BytesPerRow returns the packed size of one row.
func (g PanelGeometry) BytesPerRow() int {
	return g.W / 8
}

// FrameLen returns the packed size of a full frame.
func (g PanelGeometry) FrameLen() int {
	return g.BytesPerRow() * g.H
}

// Bounds returns the panel rectangle anchored at the origin.
func (g PanelGeometry) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.W, g.H)
}

// Full returns the window covering the whole panel.
func (g PanelGeometry) Full() Rect {
	return Rect{X1: g.W, Y1: g.H}
}

func (g PanelGeometry) String() string {
	return fmt.Sprintf("%dx%d", g.W, g.H)
}

// Rect is a half-open window [X0, X1) × [Y0, Y1) on the panel.
type Rect struct {
	X0, Y0 int
	X1, Y1 int
}

// RectFrom converts an image.Rectangle without aligning it.
func RectFrom(r image.Rectangle) Rect {
	return Rect{X0: r.Min.X, Y0: r.Min.Y, X1: r.Max.X, Y1: r.Max.Y}
}

// Image returns r as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X0, r.Y0, r.X1, r.Y1)
}

// Dx returns the width of r.
func (r Rect) Dx() int {
	return r.X1 - r.X0
}

// Dy returns the height of r.
func (r Rect) Dy() int {
	return r.Y1 - r.Y0
}

// RegionLen returns the packed size of the window. Only meaningful for an
// aligned rect.
func (r Rect) RegionLen() int {
	return r.Dx() / 8 * r.Dy()
}

// Aligned reports whether both x-bounds fall on byte boundaries.
func (r Rect) Aligned() bool {
	return r.X0%8 == 0 && r.X1%8 == 0
}

// Validate checks that r is aligned, not empty and inside g.
func (r Rect) Validate(g PanelGeometry) error {
	if !r.Aligned() {
		return fmt.Errorf("%w: %v", ErrMisalignedRegion, r)
	}
	if r.X0 < 0 || r.Y0 < 0 || r.X0 >= r.X1 || r.Y0 >= r.Y1 || r.X1 > g.W || r.Y1 > g.H {
		return fmt.Errorf("%w: %v on %v panel", ErrOutOfBounds, r, g)
	}
	return nil
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X0, r.Y0, r.X1, r.Y1)
}

// AlignDown8 returns the largest multiple of 8 not greater than x.
func AlignDown8(x int) int {
	return x &^ 7
}

// RoundUp8 returns the smallest multiple of 8 not less than x. Values above
// the largest multiple of 8 clamp to it.
func RoundUp8(x int) int {
	if x > math.MaxInt-7 {
		return math.MaxInt &^ 7
	}
	return (x + 7) &^ 7
}

// AlignRect widens raw to byte boundaries: X0 down, X1 up. Y is unchanged.
func AlignRect(raw image.Rectangle) Rect {
	return Rect{
		X0: AlignDown8(raw.Min.X),
		Y0: raw.Min.Y,
		X1: RoundUp8(raw.Max.X),
		Y1: raw.Max.Y,
	}
}
