package epdpartial

import "bytes"

// DiffRect returns the smallest aligned window covering every byte that
// differs between prev and next. ok is false when the frames are identical.
//
// A prev that does not match the geometry (for instance nil before the first
// frame) yields the full panel.
func DiffRect(prev, next PackedFrame, g PanelGeometry) (r Rect, ok bool) {
	n := g.FrameLen()
	if len(prev) != n || len(next) != n {
		return g.Full(), true
	}

	stride := g.BytesPerRow()
	minRow, maxRow := g.H, -1
	minCol, maxCol := stride, -1

	// Scan row by row, then bytes within the changed rows.
	for y := 0; y < g.H; y++ {
		rowStart := y * stride
		rowEnd := rowStart + stride
		if bytes.Equal(prev[rowStart:rowEnd], next[rowStart:rowEnd]) {
			continue
		}
		if y < minRow {
			minRow = y
		}
		maxRow = y
		for x := 0; x < stride; x++ {
			if prev[rowStart+x] != next[rowStart+x] {
				if x < minCol {
					minCol = x
				}
				if x > maxCol {
					maxCol = x
				}
			}
		}
	}
	if maxRow < 0 {
		return Rect{}, false
	}
	return Rect{X0: minCol * 8, Y0: minRow, X1: (maxCol + 1) * 8, Y1: maxRow + 1}, true
}
