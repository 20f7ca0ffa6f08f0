// Package hal is the hardware abstraction layer between e-paper drivers and
// the GPIO/SPI facilities of single-board computers.
//
// One Bus implementation exists per board family. All of them expose the same
// primitives: digital I/O on BCM-numbered pins, blocking delays, framed SPI
// writes and a power sequencing lifecycle (ModuleInit/ModuleExit). A Session,
// created once by Open after probing the host, owns the selected Bus.
//
// A Bus, and the Session wrapping it, must be driven from a single goroutine.
// Concurrent use of the same instance is unsupported and its behavior is
// undefined.
package hal

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPIClock is the fixed bus clock used by every backend that has a clock.
const SPIClock = 4 * physic.MegaHertz

// SPIMode is the clock polarity/phase used by every backend.
const SPIMode = spi.Mode0

// ErrBackendUnavailable is returned when the native GPIO/SPI capability, or
// the shared object a backend depends on, cannot be found. It is fatal.
var ErrBackendUnavailable = errors.New("hal: backend unavailable")

// ErrBusyTimeout is returned by WaitIdle when the panel stays busy past the
// context deadline.
var ErrBusyTimeout = errors.New("hal: timed out waiting for busy line")

// HardwareFault reports a GPIO or SPI I/O failure. The panel state after a
// fault is unknown, so callers must not retry silently.
type HardwareFault struct {
	Op  string // "spi write", "gpio write", ...
	Pin int    // BCM pin number, -1 for bus-wide operations
	Err error
}

func (e *HardwareFault) Error() string {
	if e.Pin >= 0 {
		return fmt.Sprintf("hal: %s on pin %d: %v", e.Op, e.Pin, e.Err)
	}
	return fmt.Sprintf("hal: %s: %v", e.Op, e.Err)
}

func (e *HardwareFault) Unwrap() error {
	return e.Err
}

// IsHardwareFault reports whether err is, or wraps, a *HardwareFault.
func IsHardwareFault(err error) bool {
	var hf *HardwareFault
	return errors.As(err, &hf)
}

func fault(op string, pin int, err error) error {
	if err == nil {
		return nil
	}
	return &HardwareFault{Op: op, Pin: pin, Err: err}
}

// Pins is the BCM-numbered pin assignment of the panel control lines.
type Pins struct {
	RST  int // Reset, output
	DC   int // Data/Command, output
	CS   int // Chip select, output when GPIO-emulated
	BUSY int // Busy status, input
	PWR  int // Panel power enable, output
}

// DefaultPins is the wiring of the Waveshare e-paper HAT.
var DefaultPins = Pins{
	RST:  17,
	DC:   25,
	CS:   8,
	BUSY: 24,
	PWR:  18,
}

func (p Pins) orDefault() Pins {
	if p == (Pins{}) {
		return DefaultPins
	}
	return p
}

// ChipSelectMode tells who drives the SPI chip-select line.
type ChipSelectMode int

const (
	// ChipSelectHardware means the SPI controller asserts CS itself.
	ChipSelectHardware ChipSelectMode = iota
	// ChipSelectGPIO means the backend toggles CS on a GPIO line around each
	// SPIWrite.
	ChipSelectGPIO
)

func (m ChipSelectMode) String() string {
	if m == ChipSelectGPIO {
		return "gpio"
	}
	return "hardware"
}

// Bus is the platform-uniform primitive set every backend provides.
//
// DigitalRead returns the raw electrical level of the pin: gpio.High when the
// line is at the supply voltage. Busy polarity is a driver concern, see
// WaitIdle.
//
// SPIWrite sends one complete framed transaction. Writes are strictly
// ordered and never batched.
type Bus interface {
	DigitalWrite(pin int, l gpio.Level) error
	DigitalRead(pin int) (gpio.Level, error)
	DelayMs(ms int)
	SPIWrite(data []byte) error

	// ModuleInit configures the GPIO lines, opens the SPI bus and then
	// raises POWER. Calling it again while initialized is a no-op.
	ModuleInit() error
	// ModuleExit closes the SPI bus and drives RESET, DC and POWER low. Both
	// halves are always attempted; their errors are joined. It is safe to
	// call repeatedly.
	ModuleExit() error

	Pins() Pins
	ChipSelect() ChipSelectMode
	String() string
}

// releaser is implemented by backends holding process-level resources
// (memory maps, loaded libraries) beyond the ModuleInit/ModuleExit cycle.
type releaser interface {
	release() error
}
