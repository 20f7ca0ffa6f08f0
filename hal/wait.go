package hal

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// BusyPolarity tells which level of the BUSY line means the panel is busy.
type BusyPolarity int

const (
	// BusyActiveLow panels pull BUSY low while refreshing (UC8179 family).
	BusyActiveLow BusyPolarity = iota
	// BusyActiveHigh panels drive BUSY high while refreshing (SSD16xx
	// family).
	BusyActiveHigh
)

func (p BusyPolarity) String() string {
	if p == BusyActiveHigh {
		return "active-high"
	}
	return "active-low"
}

// Busy reports whether the raw level l means busy under this polarity.
func (p BusyPolarity) Busy(l gpio.Level) bool {
	if p == BusyActiveHigh {
		return l == gpio.High
	}
	return l == gpio.Low
}

// WaitIdle polls pin every poll interval until it reports idle under
// polarity. The wait is bounded by ctx; on expiry it returns an error wrapping
// ErrBusyTimeout. Read errors are returned unchanged.
func WaitIdle(ctx context.Context, b Bus, pin int, polarity BusyPolarity, poll time.Duration) error {
	if poll <= 0 {
		poll = 20 * time.Millisecond
	}
	t := time.NewTicker(poll)
	defer t.Stop()
	for {
		l, err := b.DigitalRead(pin)
		if err != nil {
			return err
		}
		if !polarity.Busy(l) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (pin %d, %s): %v", ErrBusyTimeout, pin, polarity, ctx.Err())
		case <-t.C:
		}
	}
}
