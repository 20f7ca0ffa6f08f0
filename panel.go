package epdpartial

import (
	"errors"
	"fmt"
)

// Panel is the narrow surface of a vendor driver used by this package.
type Panel interface {
	// Init brings the panel to the ready state.
	Init() error
	// Display performs a blocking full-frame update.
	Display(frame PackedFrame) error
	// Sleep parks the panel in its low power mode and releases the bus.
	Sleep() error
	// Geometry returns the panel size.
	Geometry() PanelGeometry
}

// FastIniter is implemented by panels with a quicker init waveform.
type FastIniter interface {
	InitFast() error
}

// Clearer is implemented by panels that can reset to all white.
type Clearer interface {
	Clear() error
}

// PartialPanel is implemented by panels exposing a partial update entry
// point. ok is false when the panel has none.
type PartialPanel interface {
	PartialEntry() (fn PartialFunc, ok bool)
}

// PartialBaser is implemented by panels that keep a reference frame for
// their partial waveform.
type PartialBaser interface {
	SetPartialBase(frame PackedFrame) error
}

// SessionOpts tunes RunSession.
type SessionOpts struct {
	// PreferFast uses InitFast when the panel implements FastIniter.
	PreferFast bool
	// Clear resets the panel to white after init when it implements
	// Clearer.
	Clear bool
}

// RunSession initializes p, runs fn and puts p to sleep.
//
// Sleep is called exactly once on every path, including a failed init, an
// error from fn and a panic. Errors from the session body and from Sleep are
// joined.
func RunSession(p Panel, opts *SessionOpts, fn func() error) (err error) {
	if opts == nil {
		opts = &SessionOpts{}
	}
	defer func() {
		if serr := p.Sleep(); serr != nil {
			err = errors.Join(err, fmt.Errorf("epdpartial: sleep: %w", serr))
		}
	}()

	if f, ok := p.(FastIniter); ok && opts.PreferFast {
		err = f.InitFast()
	} else {
		err = p.Init()
	}
	if err != nil {
		return fmt.Errorf("epdpartial: init: %w", err)
	}
	if c, ok := p.(Clearer); ok && opts.Clear {
		if err := c.Clear(); err != nil {
			return fmt.Errorf("epdpartial: clear: %w", err)
		}
	}
	return fn()
}
