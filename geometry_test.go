package epdpartial

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestPanelGeometryValidate(t *testing.T) {
	tests := []struct {
		name    string
		g       PanelGeometry
		wantErr bool
	}{
		{"7.5in v2", PanelGeometry{W: 800, H: 480}, false},
		{"7.5in v1", PanelGeometry{W: 640, H: 384}, false},
		{"minimum", PanelGeometry{W: 8, H: 1}, false},
		{"width not byte aligned", PanelGeometry{W: 250, H: 122}, true},
		{"width zero", PanelGeometry{W: 0, H: 10}, true},
		{"height zero", PanelGeometry{W: 8, H: 0}, true},
		{"negative", PanelGeometry{W: -8, H: 8}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("Validate() = %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestPanelGeometrySizes(t *testing.T) {
	g := PanelGeometry{W: 800, H: 480}
	if g.BytesPerRow() != 100 {
		t.Errorf("BytesPerRow() = %d, want 100", g.BytesPerRow())
	}
	if g.FrameLen() != 48000 {
		t.Errorf("FrameLen() = %d, want 48000", g.FrameLen())
	}
	if g.Bounds() != image.Rect(0, 0, 800, 480) {
		t.Errorf("Bounds() = %v", g.Bounds())
	}
	if g.Full() != (Rect{X1: 800, Y1: 480}) {
		t.Errorf("Full() = %v", g.Full())
	}
}

func TestAlignHelpers(t *testing.T) {
	for x := -64; x <= 64; x++ {
		d := AlignDown8(x)
		if d%8 != 0 || d > x || x >= d+8 {
			t.Errorf("AlignDown8(%d) = %d", x, d)
		}
		u := RoundUp8(x)
		if u%8 != 0 || u < x || u-8 >= x {
			t.Errorf("RoundUp8(%d) = %d", x, u)
		}
		if x%8 == 0 && (d != x || u != x) {
			t.Errorf("aligned %d moved: down %d, up %d", x, d, u)
		}
	}
}

func TestRoundUp8Clamps(t *testing.T) {
	top := math.MaxInt &^ 7
	for _, x := range []int{top - 1, top, top + 1, math.MaxInt} {
		if got := RoundUp8(x); got != top {
			t.Errorf("RoundUp8(%d) = %d, want %d", x, got, top)
		}
	}
}

func TestAlignRect(t *testing.T) {
	tests := []struct {
		raw  image.Rectangle
		want Rect
	}{
		{image.Rect(200, 120, 440, 200), Rect{200, 120, 440, 200}},
		{image.Rect(203, 120, 437, 200), Rect{200, 120, 440, 200}},
		{image.Rect(0, 0, 1, 1), Rect{0, 0, 8, 1}},
		{image.Rect(7, 3, 9, 5), Rect{0, 3, 16, 5}},
		{image.Rect(793, 0, 800, 480), Rect{792, 0, 800, 480}},
	}
	for _, tt := range tests {
		if got := AlignRect(tt.raw); got != tt.want {
			t.Errorf("AlignRect(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestRectValidate(t *testing.T) {
	g := PanelGeometry{W: 640, H: 384}
	tests := []struct {
		name string
		r    Rect
		want error
	}{
		{"full", g.Full(), nil},
		{"window", Rect{200, 120, 440, 200}, nil},
		{"x0 misaligned", Rect{203, 120, 440, 200}, ErrMisalignedRegion},
		{"x1 misaligned", Rect{200, 120, 437, 200}, ErrMisalignedRegion},
		{"past right edge", Rect{632, 0, 648, 8}, ErrOutOfBounds},
		{"past bottom edge", Rect{0, 380, 8, 385}, ErrOutOfBounds},
		{"negative", Rect{-8, 0, 8, 8}, ErrOutOfBounds},
		{"empty", Rect{8, 8, 8, 16}, ErrOutOfBounds},
		{"inverted", Rect{16, 8, 8, 16}, ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate(g)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRectConversions(t *testing.T) {
	r := Rect{200, 120, 440, 200}
	if r.Dx() != 240 || r.Dy() != 80 || r.RegionLen() != 2400 {
		t.Errorf("Dx, Dy, RegionLen = %d, %d, %d", r.Dx(), r.Dy(), r.RegionLen())
	}
	if got := RectFrom(r.Image()); got != r {
		t.Errorf("RectFrom(Image()) = %v, want %v", got, r)
	}
	if got := r.String(); got != "(200,120)-(440,200)" {
		t.Errorf("String() = %q", got)
	}
}
