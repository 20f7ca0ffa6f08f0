package hal

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// rpiChip is the subset of go-rpio the Raspberry Pi backend uses.
type rpiChip interface {
	Open() error
	Close() error
	SpiBegin() error
	SpiEnd()
	SpiSetup(hz int, mode uint8)
	SpiTransmit(data []byte)
	Output(pin int)
	InputPullUp(pin int)
	Write(pin int, l gpio.Level)
	Read(pin int) gpio.Level
}

// rpioChip maps rpiChip onto the BCM2835 peripheral registers via go-rpio.
type rpioChip struct{}

func (rpioChip) Open() error  { return rpio.Open() }
func (rpioChip) Close() error { return rpio.Close() }

func (rpioChip) SpiBegin() error { return rpio.SpiBegin(rpio.Spi0) }
func (rpioChip) SpiEnd()         { rpio.SpiEnd(rpio.Spi0) }

func (rpioChip) SpiSetup(hz int, mode uint8) {
	rpio.SpiSpeed(hz)
	rpio.SpiMode(mode>>1&1, mode&1)
	rpio.SpiChipSelect(0)
}

func (rpioChip) SpiTransmit(data []byte) { rpio.SpiTransmit(data...) }

func (rpioChip) Output(pin int) { rpio.Pin(pin).Output() }

func (rpioChip) InputPullUp(pin int) {
	p := rpio.Pin(pin)
	p.Input()
	p.PullUp()
}

func (rpioChip) Write(pin int, l gpio.Level) {
	if l {
		rpio.Pin(pin).High()
	} else {
		rpio.Pin(pin).Low()
	}
}

func (rpioChip) Read(pin int) gpio.Level {
	return rpio.Pin(pin).Read() == rpio.High
}

// rpiBus drives the panel from a Raspberry Pi. The SPI0 block clocks the data
// out; chip-select is emulated on the CS pin, which is reclaimed from the CE0
// alternate function after the SPI block starts.
type rpiBus struct {
	chip rpiChip
	pins Pins
	log  logrus.FieldLogger

	mapped    bool
	gpioReady bool
	spiReady  bool
}

func newRPiBus(chip rpiChip, pins Pins, log logrus.FieldLogger) (*rpiBus, error) {
	if err := chip.Open(); err != nil {
		return nil, fmt.Errorf("%w: raspberry pi gpio memory: %v", ErrBackendUnavailable, err)
	}
	return &rpiBus{chip: chip, pins: pins, log: log, mapped: true}, nil
}

func (b *rpiBus) String() string { return "rpi" }

func (b *rpiBus) Pins() Pins { return b.pins }

func (b *rpiBus) ChipSelect() ChipSelectMode { return ChipSelectGPIO }

func (b *rpiBus) DigitalWrite(pin int, l gpio.Level) error {
	if !b.mapped {
		return fault("gpio write", pin, errors.New("gpio memory released"))
	}
	b.chip.Write(pin, l)
	return nil
}

// DigitalRead returns the raw level; the BUSY line has a pull-up.
func (b *rpiBus) DigitalRead(pin int) (gpio.Level, error) {
	if !b.mapped {
		return gpio.Low, fault("gpio read", pin, errors.New("gpio memory released"))
	}
	return b.chip.Read(pin), nil
}

func (b *rpiBus) DelayMs(ms int) { delayMs(ms) }

func (b *rpiBus) SPIWrite(data []byte) error {
	if !b.spiReady {
		return fault("spi write", -1, errors.New("spi not open"))
	}
	b.chip.Write(b.pins.CS, gpio.Low)
	b.chip.SpiTransmit(data)
	b.chip.Write(b.pins.CS, gpio.High)
	return nil
}

func (b *rpiBus) ModuleInit() error {
	if !b.mapped {
		return fmt.Errorf("%w: gpio memory released", ErrBackendUnavailable)
	}
	if b.spiReady && b.gpioReady {
		return nil
	}
	if !b.spiReady {
		if err := b.chip.SpiBegin(); err != nil {
			return fault("spi open", -1, err)
		}
		b.chip.SpiSetup(int(SPIClock/physic.Hertz), uint8(SPIMode))
		b.spiReady = true
	}
	if !b.gpioReady {
		b.chip.Output(b.pins.RST)
		b.chip.Write(b.pins.RST, gpio.High)
		b.chip.Output(b.pins.DC)
		b.chip.Write(b.pins.DC, gpio.Low)
		b.chip.Output(b.pins.PWR)
		b.chip.Write(b.pins.PWR, gpio.Low)
		// Takes GPIO8 back from the CE0 alternate function.
		b.chip.Output(b.pins.CS)
		b.chip.Write(b.pins.CS, gpio.High)
		b.chip.InputPullUp(b.pins.BUSY)
		b.gpioReady = true
	}
	b.chip.Write(b.pins.PWR, gpio.High)
	return nil
}

func (b *rpiBus) ModuleExit() error {
	b.log.Debug("spi end")
	if b.spiReady {
		b.chip.SpiEnd()
		b.spiReady = false
	}
	if b.mapped {
		b.chip.Write(b.pins.RST, gpio.Low)
		b.chip.Write(b.pins.DC, gpio.Low)
		b.chip.Write(b.pins.PWR, gpio.Low)
		b.log.Debug("close 5V, module enters 0 power consumption")
	}
	b.gpioReady = false
	return nil
}

func (b *rpiBus) release() error {
	if !b.mapped {
		return nil
	}
	b.mapped = false
	return b.chip.Close()
}
