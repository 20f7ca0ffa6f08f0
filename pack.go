package epdpartial

import (
	"fmt"
	"image"

	"github.com/flavioheleno/epdpartial/image1bpp"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// PackedFrame is a full panel frame, 1 bit per pixel, row-major, leftmost
// pixel in bit 7 of each byte. Set bits are white.
type PackedFrame []byte

// Pack converts img into a PackedFrame for g.
//
// img must be either the panel size (W×H) or its portrait counterpart (H×W).
// Portrait images are rotated 90° counter-clockwise so that their top edge
// ends up on the left of the panel. Pixels are thresholded with
// image1bit.BitModel.
//
// Pack is pure: the same image always yields the same bytes, and the result
// never aliases img.
func Pack(img image.Image, g PanelGeometry) (PackedFrame, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	landscape := b.Dx() == g.W && b.Dy() == g.H
	portrait := b.Dx() == g.H && b.Dy() == g.W
	if !landscape && !portrait {
		return nil, fmt.Errorf("epdpartial: image is %dx%d, panel is %v", b.Dx(), b.Dy(), g)
	}

	out := make(PackedFrame, g.FrameLen())

	// Fast path: the image already uses the controller layout.
	if m, ok := img.(*image1bpp.HorizontalMSB); ok && landscape && m.Stride == g.BytesPerRow() {
		copy(out, m.Pix)
		return out, nil
	}

	stride := g.BytesPerRow()
	for y := 0; y < g.H; y++ {
		row := out[y*stride : (y+1)*stride]
		for x := 0; x < g.W; x++ {
			sx, sy := b.Min.X+x, b.Min.Y+y
			if !landscape {
				sx, sy = b.Min.X+g.H-1-y, b.Min.Y+x
			}
			if image1bit.BitModel.Convert(img.At(sx, sy)).(image1bit.Bit) {
				row[x>>3] |= 0x80 >> uint(x&7)
			}
		}
	}
	return out, nil
}
