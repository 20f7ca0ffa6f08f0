package hal

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// lineSet drives the control lines through periph.io pins. It is shared by
// the backends that rely on the periph host drivers.
type lineSet struct {
	pins   Pins
	lines  map[int]gpio.PinIO
	csGPIO bool
}

// resolveLines looks up every control line. names maps a BCM number to the
// host pin name; missing entries default to "GPIO<n>".
func resolveLines(pins Pins, names map[int]string, csGPIO bool, byName func(string) gpio.PinIO) (*lineSet, error) {
	ls := &lineSet{pins: pins, lines: map[int]gpio.PinIO{}, csGPIO: csGPIO}
	want := []int{pins.RST, pins.DC, pins.BUSY, pins.PWR}
	if csGPIO {
		want = append(want, pins.CS)
	}
	for _, bcm := range want {
		name, ok := names[bcm]
		if !ok {
			name = fmt.Sprintf("GPIO%d", bcm)
		}
		p := byName(name)
		if p == nil {
			return nil, fmt.Errorf("%w: gpio %s (BCM %d) not found", ErrBackendUnavailable, name, bcm)
		}
		ls.lines[bcm] = p
	}
	return ls, nil
}

// configure sets directions, initial levels and the BUSY pull. POWER is left
// low; raising it is the caller's last step.
func (ls *lineSet) configure() error {
	initial := []pinLevel{
		{ls.pins.RST, gpio.High},
		{ls.pins.DC, gpio.Low},
		{ls.pins.PWR, gpio.Low},
	}
	if ls.csGPIO {
		initial = append(initial, pinLevel{ls.pins.CS, gpio.High})
	}
	for _, o := range initial {
		if err := ls.lines[o.pin].Out(o.l); err != nil {
			return fault("gpio setup", o.pin, err)
		}
	}
	if err := ls.lines[ls.pins.BUSY].In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fault("gpio setup", ls.pins.BUSY, err)
	}
	return nil
}

type pinLevel struct {
	pin int
	l   gpio.Level
}

func (ls *lineSet) write(pin int, l gpio.Level) error {
	p, ok := ls.lines[pin]
	if !ok {
		return fault("gpio write", pin, errors.New("pin not managed by this backend"))
	}
	return fault("gpio write", pin, p.Out(l))
}

func (ls *lineSet) read(pin int) (gpio.Level, error) {
	p, ok := ls.lines[pin]
	if !ok {
		return gpio.Low, fault("gpio read", pin, errors.New("pin not managed by this backend"))
	}
	return p.Read(), nil
}

// powerDown drives RESET, DC and POWER low, attempting every line.
func (ls *lineSet) powerDown() error {
	var errs []error
	for _, pin := range []int{ls.pins.RST, ls.pins.DC, ls.pins.PWR} {
		errs = append(errs, ls.write(pin, gpio.Low))
	}
	return errors.Join(errs...)
}

// framed wraps an SPI transfer with a GPIO chip-select pulse when CS is
// emulated.
func (ls *lineSet) framed(tx func() error) error {
	if !ls.csGPIO {
		return tx()
	}
	if err := ls.write(ls.pins.CS, gpio.Low); err != nil {
		return err
	}
	txErr := tx()
	return errors.Join(txErr, ls.write(ls.pins.CS, gpio.High))
}

func delayMs(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
