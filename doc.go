// Package epdpartial drives partial refreshes of monochrome e-paper panels.
//
// A partial refresh updates a rectangular window of the panel without
// repainting the whole frame. It is faster than a full update and avoids the
// black/white flash of the full waveform. The controller addresses its RAM
// one byte (8 horizontal pixels) at a time, so every window is aligned to
// multiples of 8 on the x axis.
//
// # Frame Layout
//
// Frames are packed 1 bit per pixel, row-major, 8 pixels per byte with the
// leftmost pixel in bit 7. A set bit is white and a cleared bit is black:
//
//	byte 0           byte 1           ...  byte W/8-1
//	x=0 ........ x=7 x=8 ....... x=15      x=W-8 ... x=W-1   row 0
//	...                                                      row H-1
//
// Pack produces such a frame from any image.Image. The fast path is an
// *image1bpp.HorizontalMSB with the panel's bounds, which already uses this
// layout.
//
// # Windows
//
// A Rect is half-open on both axes. AlignRect widens a requested box to byte
// boundaries: X0 is rounded down and X1 rounded up, Y is left untouched.
// Extract copies the bytes of an aligned window out of a full frame:
//
//	r := epdpartial.AlignRect(image.Rect(203, 120, 437, 200)) // {200 120 440 200}
//	region, err := epdpartial.Extract(frame, geom, r)          // 30 bytes × 80 rows
//
// # Partial Entry Points
//
// Vendor drivers do not agree on the arguments of their partial update call.
// A driver exposes it as a PartialFunc and rejects argument layouts it does
// not understand with an error wrapping ErrCallShapeMismatch. Bad windows in
// an accepted layout fail with ErrOutOfBounds or ErrMisalignedRegion and are
// never retried in another layout. The Dispatcher
// tries a closed, ordered list of layouts on the first call and keeps the
// first one that is accepted:
//
//	region:      (data, x0, y0, x1, y1)
//	             (data, x0, y0, width, height)
//	             (io.Reader, x0, y0, x1, y1)
//	full window: (frame, 0, 0, W, H)
//	             (frame)
//
// Any other error stops the negotiation and is returned as is. When every
// layout is rejected the negotiation fails for good and ErrShapesExhausted is
// returned.
//
// # Basic Usage
//
//	s, err := hal.Open(&hal.Opts{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	epd, err := waveshare7in5v2.New(s, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = epdpartial.RunSession(epd, &epdpartial.SessionOpts{Clear: true}, func() error {
//		u, err := epdpartial.NewUpdater(epd, nil)
//		if err != nil {
//			return err
//		}
//		if err := u.ShowBase(base); err != nil {
//			return err
//		}
//		_, err = u.UpdateRegion(next, image.Rect(200, 120, 440, 200))
//		return err
//	})
//
// RunSession puts the panel to sleep exactly once, whatever fn returns. The
// Updater falls back to a full Display when the panel has no partial entry
// point or when the negotiation failed, so the panel always ends up showing
// a consistent frame.
//
// # Concurrency
//
// Nothing in this module is safe for concurrent use. A panel, its bus and
// the updater driving it belong to a single goroutine.
package epdpartial
