package epdpartial

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// PartialFunc is a vendor partial update entry point. Its argument layout is
// only known to the driver; a layout it does not accept must be rejected
// with an error wrapping ErrCallShapeMismatch (see MismatchError) before any
// byte is sent to the panel.
type PartialFunc func(args ...any) error

// MismatchError builds the error a PartialFunc returns for arguments it does
// not accept.
func MismatchError(args ...any) error {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = fmt.Sprintf("%T", a)
	}
	return fmt.Errorf("%w: (%s)", ErrCallShapeMismatch, strings.Join(types, ", "))
}

// Shape is one argument layout tried against a PartialFunc.
type Shape int

const (
	// ShapeNone is the zero value, reported by negotiations that are not
	// bound.
	ShapeNone Shape = iota
	// ShapeRegionCoords calls fn([]byte region, x0, y0, x1, y1).
	ShapeRegionCoords
	// ShapeRegionSize calls fn([]byte region, x0, y0, width, height).
	ShapeRegionSize
	// ShapeRegionReader calls fn(io.Reader region, x0, y0, x1, y1).
	ShapeRegionReader
	// ShapeFullCoords calls fn([]byte frame, 0, 0, W, H).
	ShapeFullCoords
	// ShapeFullOnly calls fn([]byte frame).
	ShapeFullOnly
)

func (s Shape) String() string {
	switch s {
	case ShapeRegionCoords:
		return "region+coords"
	case ShapeRegionSize:
		return "region+size"
	case ShapeRegionReader:
		return "region-reader+coords"
	case ShapeFullCoords:
		return "full+coords"
	case ShapeFullOnly:
		return "full-only"
	default:
		return "none"
	}
}

// Kind selects one of the two negotiations of a Dispatcher.
type Kind int

const (
	// KindRegion delivers an extracted window.
	KindRegion Kind = iota
	// KindFull delivers a full frame to the partial entry point.
	KindFull
)

func (k Kind) valid() bool {
	return k == KindRegion || k == KindFull
}

func (k Kind) String() string {
	if k == KindFull {
		return "full-window"
	}
	return "region"
}

// State is the progress of one negotiation.
type State int

const (
	// StateUnprobed means no call shape has been accepted yet.
	StateUnprobed State = iota
	// StateBound means a call shape was accepted and is reused.
	StateBound
	// StateFailed means every call shape was rejected.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateBound:
		return "bound"
	case StateFailed:
		return "failed"
	default:
		return "unprobed"
	}
}

var shapeOrder = [...][]Shape{
	KindRegion: {ShapeRegionCoords, ShapeRegionSize, ShapeRegionReader},
	KindFull:   {ShapeFullCoords, ShapeFullOnly},
}

type negotiation struct {
	state State
	shape Shape
}

// Dispatcher delivers windows and frames to a PartialFunc, discovering the
// accepted call shape on first use. The region and full-window negotiations
// are independent.
type Dispatcher struct {
	fn   PartialFunc
	log  logrus.FieldLogger
	negs [2]negotiation
}

// NewDispatcher returns a Dispatcher with both negotiations unprobed.
func NewDispatcher(fn PartialFunc, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{fn: fn, log: log}
}

// Negotiation returns the state of the kind negotiation and its bound shape.
// An unknown kind reports StateUnprobed and ShapeNone.
func (d *Dispatcher) Negotiation(kind Kind) (State, Shape) {
	if !kind.valid() {
		return StateUnprobed, ShapeNone
	}
	n := d.negs[kind]
	return n.state, n.shape
}

// SendRegion delivers region, extracted for r, to the entry point.
func (d *Dispatcher) SendRegion(region RegionBuffer, r Rect) error {
	if len(region) != r.RegionLen() {
		return fmt.Errorf("epdpartial: region is %d bytes, %v needs %d", len(region), r, r.RegionLen())
	}
	return d.send(KindRegion, func(s Shape) []any {
		switch s {
		case ShapeRegionSize:
			return []any{[]byte(region), r.X0, r.Y0, r.Dx(), r.Dy()}
		case ShapeRegionReader:
			return []any{bytes.NewReader(region), r.X0, r.Y0, r.X1, r.Y1}
		default:
			return []any{[]byte(region), r.X0, r.Y0, r.X1, r.Y1}
		}
	})
}

// SendFull delivers a full frame to the entry point.
func (d *Dispatcher) SendFull(frame PackedFrame, g PanelGeometry) error {
	if len(frame) != g.FrameLen() {
		return fmt.Errorf("epdpartial: frame is %d bytes, %v panel needs %d", len(frame), g, g.FrameLen())
	}
	return d.send(KindFull, func(s Shape) []any {
		if s == ShapeFullOnly {
			return []any{[]byte(frame)}
		}
		return []any{[]byte(frame), 0, 0, g.W, g.H}
	})
}

func (d *Dispatcher) send(kind Kind, args func(Shape) []any) error {
	if !kind.valid() {
		return fmt.Errorf("epdpartial: unknown negotiation %d", int(kind))
	}
	n := &d.negs[kind]
	switch n.state {
	case StateBound:
		return d.fn(args(n.shape)...)
	case StateFailed:
		return fmt.Errorf("%w (%s)", ErrShapesExhausted, kind)
	}

	log := d.log.WithField("negotiation", kind)
	for _, s := range shapeOrder[kind] {
		err := d.fn(args(s)...)
		if errors.Is(err, ErrCallShapeMismatch) {
			log.WithField("shape", s).Debugf("shape rejected: %v", err)
			continue
		}
		if err != nil {
			return err
		}
		n.state, n.shape = StateBound, s
		log.WithField("shape", s).Info("partial call shape bound")
		return nil
	}
	n.state = StateFailed
	log.Warn("partial entry point rejected every call shape")
	return fmt.Errorf("%w (%s)", ErrShapesExhausted, kind)
}
