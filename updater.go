package epdpartial

import (
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
)

// Mode tells how an update reached the panel.
type Mode int

const (
	// ModeUnchanged means nothing was sent.
	ModeUnchanged Mode = iota
	// ModeBase means the frame was shown as a new full base frame.
	ModeBase
	// ModePartial means the partial entry point accepted the update.
	ModePartial
	// ModeFullFallback means the partial path was unavailable and the frame
	// was shown with a full Display.
	ModeFullFallback
)

func (m Mode) String() string {
	switch m {
	case ModeBase:
		return "base"
	case ModePartial:
		return "partial"
	case ModeFullFallback:
		return "full-fallback"
	default:
		return "unchanged"
	}
}

// Outcome describes one update.
type Outcome struct {
	Mode Mode
	Rect Rect // Window covered by the update
}

// Updater pushes images to a Panel, preferring partial refreshes and falling
// back to full updates so the panel always shows a complete frame.
type Updater struct {
	panel Panel
	geom  PanelGeometry
	disp  *Dispatcher // nil without a partial entry point
	log   logrus.FieldLogger
	last  PackedFrame
}

// NewUpdater returns an Updater for p. The partial entry point, if any, is
// looked up once.
func NewUpdater(p Panel, log logrus.FieldLogger) (*Updater, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	g := p.Geometry()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	u := &Updater{panel: p, geom: g, log: log.WithField("panel", g.String())}
	if pp, ok := p.(PartialPanel); ok {
		if fn, ok := pp.PartialEntry(); ok && fn != nil {
			u.disp = NewDispatcher(fn, u.log)
		}
	}
	if u.disp == nil {
		u.log.Info("panel has no partial entry point, updates will be full frames")
	}
	return u, nil
}

// Dispatcher returns the dispatcher driving the partial entry point, or nil.
func (u *Updater) Dispatcher() *Dispatcher {
	return u.disp
}

// Last returns the frame currently believed to be on the panel, or nil when
// it is unknown.
func (u *Updater) Last() PackedFrame {
	return u.last
}

// ShowBase displays img as a full frame and makes it the reference for the
// partial waveform when the panel supports one.
func (u *Updater) ShowBase(img image.Image) error {
	frame, err := Pack(img, u.geom)
	if err != nil {
		return err
	}
	return u.showBase(frame)
}

func (u *Updater) showBase(frame PackedFrame) error {
	if err := u.panel.Display(frame); err != nil {
		return err
	}
	u.last = frame
	if b, ok := u.panel.(PartialBaser); ok {
		if err := b.SetPartialBase(frame); err != nil {
			return fmt.Errorf("epdpartial: set partial base: %w", err)
		}
	}
	return nil
}

// UpdateRegion shows img, refreshing only the window raw widened to byte
// boundaries. Bounds errors are returned before anything is sent.
func (u *Updater) UpdateRegion(img image.Image, raw image.Rectangle) (Outcome, error) {
	r := AlignRect(raw)
	if err := r.Validate(u.geom); err != nil {
		return Outcome{}, err
	}
	frame, err := Pack(img, u.geom)
	if err != nil {
		return Outcome{}, err
	}
	return u.sendRegion(frame, r)
}

// UpdateFullWindow shows img through the partial entry point with a full
// frame.
func (u *Updater) UpdateFullWindow(img image.Image) (Outcome, error) {
	frame, err := Pack(img, u.geom)
	if err != nil {
		return Outcome{}, err
	}
	r := u.geom.Full()
	if u.disp == nil {
		return u.fallback(frame, r, nil)
	}
	err = u.disp.SendFull(frame, u.geom)
	return u.settle(frame, r, err)
}

// Update shows img, refreshing the smallest window that changed since the
// last frame. The first call shows img as the base frame.
func (u *Updater) Update(img image.Image) (Outcome, error) {
	frame, err := Pack(img, u.geom)
	if err != nil {
		return Outcome{}, err
	}
	if u.last == nil {
		if err := u.showBase(frame); err != nil {
			return Outcome{}, err
		}
		return Outcome{Mode: ModeBase, Rect: u.geom.Full()}, nil
	}
	r, changed := DiffRect(u.last, frame, u.geom)
	if !changed {
		return Outcome{Mode: ModeUnchanged}, nil
	}
	return u.sendRegion(frame, r)
}

func (u *Updater) sendRegion(frame PackedFrame, r Rect) (Outcome, error) {
	if u.disp == nil {
		return u.fallback(frame, r, nil)
	}
	region, err := Extract(frame, u.geom, r)
	if err != nil {
		return Outcome{}, err
	}
	err = u.disp.SendRegion(region, r)
	return u.settle(frame, r, err)
}

// settle turns the result of a partial call into an Outcome. Only an
// exhausted negotiation falls back; every other error is returned.
func (u *Updater) settle(frame PackedFrame, r Rect, err error) (Outcome, error) {
	switch {
	case err == nil:
		u.record(frame, r)
		return Outcome{Mode: ModePartial, Rect: r}, nil
	case errors.Is(err, ErrShapesExhausted):
		return u.fallback(frame, r, err)
	default:
		return Outcome{}, err
	}
}

// record marks the window r of frame as shown. Bytes outside r keep what the
// panel showed before; with no earlier frame the panel content stays unknown.
func (u *Updater) record(frame PackedFrame, r Rect) {
	if r == u.geom.Full() {
		u.last = frame
		return
	}
	if u.last == nil {
		return
	}
	next := make(PackedFrame, len(u.last))
	copy(next, u.last)
	bpr := u.geom.BytesPerRow()
	for y := r.Y0; y < r.Y1; y++ {
		lo, hi := y*bpr+r.X0/8, y*bpr+r.X1/8
		copy(next[lo:hi], frame[lo:hi])
	}
	u.last = next
}

func (u *Updater) fallback(frame PackedFrame, r Rect, cause error) (Outcome, error) {
	entry := u.log.WithField("rect", r.String())
	if cause != nil {
		entry = entry.WithError(cause)
	}
	entry.Warn("partial refresh unavailable, falling back to full display")
	if err := u.panel.Display(frame); err != nil {
		return Outcome{}, err
	}
	u.last = frame
	return Outcome{Mode: ModeFullFallback, Rect: r}, nil
}
