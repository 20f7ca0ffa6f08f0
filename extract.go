package epdpartial

import "fmt"

// RegionBuffer holds the packed bytes of one window, row after row. It does
// not share memory with the frame it was extracted from.
type RegionBuffer []byte

// Extract copies the window r out of frame.
//
// r must be aligned (ErrMisalignedRegion) and lie within g
// (ErrOutOfBounds). The frame must hold at least g.FrameLen() bytes. All
// checks happen before the output is allocated, so a failed call copies
// nothing.
func Extract(frame PackedFrame, g PanelGeometry, r Rect) (RegionBuffer, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := r.Validate(g); err != nil {
		return nil, err
	}
	if len(frame) < g.FrameLen() {
		return nil, fmt.Errorf("%w: frame is %d bytes, %v panel needs %d", ErrOutOfBounds, len(frame), g, g.FrameLen())
	}

	stride := g.BytesPerRow()
	byteWidth := r.Dx() / 8
	xbyte := r.X0 / 8

	out := make(RegionBuffer, byteWidth*r.Dy())
	dstIdx := 0
	for y := r.Y0; y < r.Y1; y++ {
		srcStart := y*stride + xbyte
		copy(out[dstIdx:], frame[srcStart:srcStart+byteWidth])
		dstIdx += byteWidth
	}
	return out, nil
}
